package category

import "time"

type Type string

const (
	TypeTeam       Type = "team"
	TypeLeague     Type = "league"
	TypeCountry    Type = "country"
	TypeSeason     Type = "season"
	TypeJerseyType Type = "jersey_type"
)

func (t Type) Valid() bool {
	switch t {
	case TypeTeam, TypeLeague, TypeCountry, TypeSeason, TypeJerseyType:
		return true
	}
	return false
}

// Category maps to the `categories` table. Products reference one
// category per type.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Type      Type      `json:"type"`
	ParentID  *string   `json:"parentId,omitempty"`
	ImageURL  *string   `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
