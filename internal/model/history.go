package model

import "time"

// History is one stored prediction of a signed-in user.
type History struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Disease    string    `json:"disease"`
	Confidence float64   `json:"confidence"`
	ImageURL   string    `json:"image_url"`
	Timestamp  time.Time `json:"timestamp"`
}
