package unresolved

// @OA\Info(title="Broken", version=Missing::VERSION)
// @OA\Get(path="/ping", @OA\Response(response=200, description="pong"))
var _ = 0
