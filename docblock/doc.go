// Package docblock parses annotation tags out of documentation comments.
//
// A block such as
//
//	@OA\Get(
//	    path="/pets/{id}",
//	    @OA\PathParameter(name="id", @OA\Schema(type="integer")),
//	    @OA\Response(response=200, description=Pet::class),
//	)
//
// is handled in three steps. [Scan] finds each tag and the raw text of its
// balanced argument list. The argument reader types every value (strings,
// numbers, booleans, null, {} arrays, nested tags and Identifier::NAME
// constant references) and the builder turns the invocation into a
// [node.Node] of the kind registered for its resolved name.
//
// Tag names resolve through an [AliasTable]: the default alias "oa" maps to
// the OpenApi\Annotations namespace, which is also searched for bare names,
// so @OA\Get, @oa\Get and @Get all build the same kind.
//
// Constant references are expanded through the alias table and looked up
// with a [ConstantLookup]. Identifier::class yields the expanded identifier
// itself; a bare NAME refers to a constant of the block's own package.
//
// Recoverable problems are reported to a [diag.Reporter] and the offending
// invocation, argument or child is skipped. An unresolved constant is fatal
// for its invocation only.
package docblock
