package domain

import "time"

// CardScan is the card-reader collaborator's latest observation.
type CardScan struct {
	CardID    string
	ScannedAt time.Time
}
