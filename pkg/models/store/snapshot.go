package store

import "time"

type Snapshot struct {
	ID        string
	Key       string
	Payload   []byte
	CreatedAt time.Time
}
