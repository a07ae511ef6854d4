// Package petstore serves the pet store.
//
// @OA\Info(title="Petstore", version=Version)
// @OA\Server(url="https://petstore.example.com/v1")
package petstore

// Version is the API version.
const Version = "1.0.0"

// Pet is an animal in the store.
//
// @OA\Schema(required={"id", "name"})
type Pet struct {
	// @OA\Property(type="integer", format="int64")
	ID int64 `json:"id"`
	// @OA\Property(type="string")
	Name string `json:"name"`
}

// Store serves pets.
type Store struct{}

// ListPets lists all pets.
//
// @OA\Get(
//
//	path="/pets",
//	tags={"pets"},
//	@OA\Response(
//	    response=200,
//	    description="A list of pets",
//	    @OA\JsonContent(type="array", @OA\Items(ref="#/components/schemas/Pet"))
//	)
//
// )
func (s *Store) ListPets() {}

// GetPet returns one pet.
//
// @OA\Get(
//
//	path="/pets/{id}",
//	tags={"pets"},
//	@OA\PathParameter(name="id", @OA\Schema(type="integer")),
//	@OA\Response(response=200, description="The pet", @OA\JsonContent(ref="#/components/schemas/Pet")),
//	@OA\Response(response="default", ref="#/components/responses/Error")
//
// )
func (s *Store) GetPet() {}
