package domain

import "time"

type Holiday struct {
	Date time.Time
	Name string
}
