package recipe

import "errors"

// Domain errors for catalog operations

var (
	ErrEmptyTitle     = errors.New("recipe title must not be empty")
	ErrRecipeNotFound = errors.New("recipe not found")
)
