// Package pets serves the pet store.
//
// @OA\Info(title="Pets", version=Version)
package pets

import (
	"fmt"

	models "example.com/petstore/models"
)

const (
	Version  = "1.0.0"
	MaxPets  = 50
	Ratio    = -0.5
	Enabled  = true
	computed = len("abc")
)

// Pet is an animal in the store.
//
// @OA\Schema()
type Pet struct {
	// @OA\Property(type="integer")
	ID int64 `json:"id"`
	Name string `json:"name,omitempty"` // @OA\Property(type="string")
	// Plain comment.
	Tag string
}

// ListPets lists pets.
//
// @OA\Get(path="/pets", @OA\Response(response=200, description="ok"))
func (s *Store[T]) ListPets() {
	// @OA\Tag(name="inline")
	fmt.Println(models.Name)
}

var (
	// @OA\Server(url="https://example.com")
	server = "x"
	other  = "y"
)
