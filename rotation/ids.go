package rotation

import "github.com/google/uuid"

type IDGenerator interface {
	Generate() string
}

// UUIDGenerator hands out random v4 UUIDs. Ids are never reused.
type UUIDGenerator struct{}

func (UUIDGenerator) Generate() string {
	return uuid.NewString()
}
