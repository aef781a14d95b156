package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/jersey-shop-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	productColumns = `p.id, p.title, p.slug, p.description, p.price, p.sale_price, p.is_active, p.is_featured,
		p.team_id, p.league_id, p.country_id, p.season_id, p.jersey_type_id, p.meta_title, p.meta_description,
		p.created_at, p.updated_at`

	// $1 include inactive, $2 featured only, $3 category id or NULL, $4 search text.
	listProductsQuery = `
		SELECT ` + productColumns + `
		FROM products p
		WHERE ($1 OR p.is_active)
		  AND (NOT $2 OR p.is_featured)
		  AND ($3::uuid IS NULL OR $3::uuid IN (p.team_id, p.league_id, p.country_id, p.season_id, p.jersey_type_id))
		  AND ($4 = '' OR p.title ILIKE '%' || $4 || '%' OR p.slug ILIKE '%' || $4 || '%')
	`
	getProductByIDQuery      = `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`
	getProductBySlugQuery    = `SELECT ` + productColumns + ` FROM products p WHERE p.slug = $1`
	getProductByVariantQuery = `
		SELECT ` + productColumns + `
		FROM products p
		JOIN product_variants v ON v.product_id = p.id
		WHERE v.id = $1
	`
	insertProductQuery = `
		INSERT INTO products (id, title, slug, description, price, sale_price, is_active, is_featured,
			team_id, league_id, country_id, season_id, jersey_type_id, meta_title, meta_description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	updateProductQuery = `
		UPDATE products
		SET title = $2, slug = $3, description = $4, price = $5, sale_price = $6, is_active = $7, is_featured = $8,
			team_id = $9, league_id = $10, country_id = $11, season_id = $12, jersey_type_id = $13,
			meta_title = $14, meta_description = $15, updated_at = $16
		WHERE id = $1
	`
	setFlagsQuery      = `UPDATE products SET is_active = $2, is_featured = $3, updated_at = NOW() WHERE id = $1`
	deleteProductQuery = `DELETE FROM products WHERE id = $1`

	// Variants that survive an update keep their id so cart lines pointing
	// at them stay valid.
	pruneVariantsQuery = `DELETE FROM product_variants WHERE product_id = $1 AND NOT (id = ANY($2::uuid[]))`
	upsertVariantQuery = `
		INSERT INTO product_variants (id, product_id, size, sku, stock)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET size = EXCLUDED.size, sku = EXCLUDED.sku, stock = EXCLUDED.stock
	`
	deleteImagesQuery = `DELETE FROM product_images WHERE product_id = $1`
	insertImageQuery  = `INSERT INTO product_images (id, product_id, url, alt_text, position) VALUES ($1, $2, $3, $4, $5)`

	variantsForProductsQuery = `
		SELECT id, product_id, size, sku, stock
		FROM product_variants
		WHERE product_id = ANY($1::uuid[])
		ORDER BY product_id, size
	`
	imagesForProductsQuery = `
		SELECT id, product_id, url, alt_text, position
		FROM product_images
		WHERE product_id = ANY($1::uuid[])
		ORDER BY product_id, position
	`

	inventoryQuery = `
		SELECT v.id, p.id, p.title, p.slug, v.size, v.sku, v.stock
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE ($1::int IS NULL OR v.stock <= $1)
		ORDER BY p.title, v.size
	`
	updateStockQuery   = `UPDATE product_variants SET stock = $2 WHERE id = $1`
	countProductsQuery = `SELECT COUNT(*) FROM products`
	lowStockCountQuery = `SELECT COUNT(*) FROM product_variants WHERE stock <= $1`
)

var orderBy = map[Sort]string{
	SortNewest:    ` ORDER BY p.created_at DESC`,
	SortPriceAsc:  ` ORDER BY p.price ASC, p.created_at DESC`,
	SortPriceDesc: ` ORDER BY p.price DESC, p.created_at DESC`,
	SortFeatured:  ` ORDER BY p.is_featured DESC, p.created_at DESC`,
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	order, ok := orderBy[f.Sort]
	if !ok {
		order = orderBy[SortNewest]
	}
	rows, err := r.db.QueryContext(ctx, listProductsQuery+order,
		f.IncludeInactive, f.FeaturedOnly, nullString(f.CategoryID), f.Search)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	if err := r.attachChildren(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return Product{}, err
	}
	out := []Product{p}
	if err := r.attachChildren(ctx, out); err != nil {
		return Product{}, err
	}
	return out[0], nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Product, error) {
	return r.getOne(ctx, getProductByIDQuery, id)
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (Product, error) {
	return r.getOne(ctx, getProductBySlugQuery, slug)
}

func (r *PostgresRepository) GetByVariant(ctx context.Context, variantID string) (Product, error) {
	p, err := r.getOne(ctx, getProductByVariantQuery, variantID)
	if errors.Is(err, ErrNotFound) {
		return Product{}, ErrVariantNotFound
	}
	return p, err
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertProductQuery, productArgs(p, p.CreatedAt, p.UpdatedAt)...); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		return writeChildren(ctx, tx, p)
	})
	if err != nil {
		return Product{}, mapWriteErr(err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p Product) (Product, error) {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, updateProductQuery, productArgs(p, p.UpdatedAt)...)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}

		keep := make([]string, len(p.Variants))
		for i, v := range p.Variants {
			keep[i] = v.ID
		}
		if _, err := tx.ExecContext(ctx, pruneVariantsQuery, p.ID, pq.Array(keep)); err != nil {
			return fmt.Errorf("prune variants: %w", err)
		}
		if _, err := tx.ExecContext(ctx, deleteImagesQuery, p.ID); err != nil {
			return fmt.Errorf("delete images: %w", err)
		}
		return writeChildren(ctx, tx, p)
	})
	if err != nil {
		return Product{}, mapWriteErr(err)
	}
	return p, nil
}

func writeChildren(ctx context.Context, tx *sql.Tx, p Product) error {
	for _, v := range p.Variants {
		if _, err := tx.ExecContext(ctx, upsertVariantQuery, v.ID, p.ID, v.Size, v.SKU, v.Stock); err != nil {
			return fmt.Errorf("upsert variant %s: %w", v.SKU, err)
		}
	}
	for _, img := range p.Images {
		if _, err := tx.ExecContext(ctx, insertImageQuery, img.ID, p.ID, img.URL, nullString(img.AltText), img.Position); err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
	}
	return nil
}

func mapWriteErr(err error) error {
	if database.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PostgresRepository) SetFlags(ctx context.Context, id string, active, featured bool) error {
	res, err := r.db.ExecContext(ctx, setFlagsQuery, id, active, featured)
	if err != nil {
		return fmt.Errorf("set product flags: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Inventory(ctx context.Context, maxStock *int) ([]InventoryItem, error) {
	var limit sql.NullInt64
	if maxStock != nil {
		limit = sql.NullInt64{Int64: int64(*maxStock), Valid: true}
	}
	rows, err := r.db.QueryContext(ctx, inventoryQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	out := make([]InventoryItem, 0)
	for rows.Next() {
		var it InventoryItem
		if err := rows.Scan(&it.VariantID, &it.ProductID, &it.ProductTitle, &it.ProductSlug, &it.Size, &it.SKU, &it.Stock); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateStock(ctx context.Context, updates []StockUpdate) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, u := range updates {
			res, err := tx.ExecContext(ctx, updateStockQuery, u.VariantID, u.Stock)
			if err != nil {
				return fmt.Errorf("update stock %s: %w", u.VariantID, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("update stock %s: %w", u.VariantID, ErrVariantNotFound)
			}
		}
		return nil
	})
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countProductsQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) LowStockCount(ctx context.Context, threshold int) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, lowStockCountQuery, threshold).Scan(&n); err != nil {
		return 0, fmt.Errorf("count low stock: %w", err)
	}
	return n, nil
}

// attachChildren loads variants and images for all products in two queries.
func (r *PostgresRepository) attachChildren(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	pos := make(map[string]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		pos[p.ID] = i
		products[i].Variants = []Variant{}
		products[i].Images = []Image{}
	}

	rows, err := r.db.QueryContext(ctx, variantsForProductsQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("list variants: %w", err)
	}
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.SKU, &v.Stock); err != nil {
			rows.Close()
			return fmt.Errorf("scan variant: %w", err)
		}
		if i, ok := pos[v.ProductID]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate variants: %w", err)
	}

	rows, err = r.db.QueryContext(ctx, imagesForProductsQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			img       Image
			productID string
			alt       sql.NullString
		)
		if err := rows.Scan(&img.ID, &productID, &img.URL, &alt, &img.Position); err != nil {
			return fmt.Errorf("scan image: %w", err)
		}
		img.AltText = alt.String
		if i, ok := pos[productID]; ok {
			products[i].Images = append(products[i].Images, img)
		}
	}
	return rows.Err()
}

// productArgs lists the product columns in statement order followed by
// the timestamps the statement writes.
func productArgs(p Product, stamps ...any) []any {
	var sale decimal.NullDecimal
	if p.SalePrice != nil {
		sale = decimal.NullDecimal{Decimal: *p.SalePrice, Valid: true}
	}
	c := p.Categories
	args := []any{
		p.ID, p.Title, p.Slug, nullString(p.Description), p.Price, sale, p.Active, p.Featured,
		nullRef(c.TeamID), nullRef(c.LeagueID), nullRef(c.CountryID), nullRef(c.SeasonID), nullRef(c.JerseyTypeID),
		nullString(p.MetaTitle), nullString(p.MetaDescription),
	}
	return append(args, stamps...)
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p                                       Product
		desc, metaTitle, metaDesc               sql.NullString
		team, league, country, season, jerseyTy sql.NullString
		sale                                    decimal.NullDecimal
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &desc, &p.Price, &sale, &p.Active, &p.Featured,
		&team, &league, &country, &season, &jerseyTy, &metaTitle, &metaDesc, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("scan product: %w", err)
	}
	p.Description = desc.String
	p.MetaTitle = metaTitle.String
	p.MetaDescription = metaDesc.String
	if sale.Valid {
		v := sale.Decimal
		p.SalePrice = &v
	}
	p.Categories = Categories{
		TeamID: refOf(team), LeagueID: refOf(league), CountryID: refOf(country),
		SeasonID: refOf(season), JerseyTypeID: refOf(jerseyTy),
	}
	return p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullRef(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return nullString(*s)
}

func refOf(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
