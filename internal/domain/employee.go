package domain

import "strings"

type Employee struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	JobTitle string `json:"job_title"`
}

// Validate checks the attributes an employee row must carry before insert.
func (e Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return invalid("name", "must be a non-empty string")
	}
	return nil
}
