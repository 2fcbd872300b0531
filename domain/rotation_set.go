package domain

import (
	"time"

	"github.com/mattfehr/volleyball-rotation-tracker/codec"
)

// RotationSetRecord is a rotation set as stored for one user.
type RotationSetRecord struct {
	Id        string
	UserId    string
	Document  codec.KeyedDocument
	CreatedAt time.Time
	UpdatedAt time.Time
}
