package models

import "time"

// MailMessage is one contact-form submission. Field names follow the form
// the client posts.
type MailMessage struct {
	ID        string    `json:"id,omitempty"`
	Nombre    string    `json:"nombre"`
	Apellido  string    `json:"apellido"`
	Email     string    `json:"email"`
	Asunto    string    `json:"asunto"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
