package parameter

// @OA\Parameter(description="This is my parameter")
var limit = 10
