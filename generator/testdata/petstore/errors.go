package petstore

// Error is returned on failure.
//
// @OA\Schema(schema="Error", @OA\Property(property="message", type="string"))
type Error struct {
	Message string `json:"message"`
}

// @OA\Response(response="Error", description="Unexpected error", @OA\JsonContent(ref="#/components/schemas/Error"))
var errorResponse = Error{}
