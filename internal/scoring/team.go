package scoring

// Team and Category are reference data: the engine reads them when creating a
// match and never writes them back.

type Category struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Order int    `db:"sort_order" json:"order"`
}

type Team struct {
	ID         string  `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	Flag       *string `db:"flag" json:"flag,omitempty"`
	CategoryID *string `db:"category_id" json:"category_id,omitempty"`
}
