package api_v1

import "fmt"

type NotFoundError struct {
	Entity string
	Id     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Id)
}

type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

type ConflictError struct {
	Entity string
	Id     string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently, retry with fresh state", e.Entity, e.Id)
}
