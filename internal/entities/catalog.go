package entities

import "time"

type Book struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Seq           int64     `gorm:"index" json:"seq"`
	Title         string    `gorm:"index;size:512" json:"title"`
	Author        string    `gorm:"index;size:256" json:"author"`
	PublishedYear int       `json:"published_year"`
	CoverKey      string    `gorm:"size:128" json:"cover_key,omitempty"` // blob key under the covers directory
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

type Genre struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Seq       int64     `gorm:"index" json:"seq"`
	Name      string    `gorm:"index;size:100" json:"name"`
	Color     []byte    `json:"color,omitempty"` // opaque, stored as given
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Genre) TableName() string {
	return "genres"
}

// BookGenre is a membership row. The autoincrement ID records the order in
// which books joined a genre.
type BookGenre struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	BookID  string `gorm:"index;size:36" json:"book_id"`
	GenreID string `gorm:"index;size:36" json:"genre_id"`
}

func (BookGenre) TableName() string {
	return "book_genres"
}

type Note struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Seq       int64     `gorm:"index" json:"seq"`
	BookID    string    `gorm:"index;size:36" json:"book_id"`
	Title     string    `gorm:"size:512" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Note) TableName() string {
	return "notes"
}
