package entity

import "time"

// Office representa una sede o punto de facturación.
// Code no es único ni obligatorio (viene de importaciones masivas).
type Office struct {
	ID        string
	Code      string
	Name      string
	SiteType  string
	Address   string
	City      string
	Zone      string
	CreatedAt time.Time
}
