// Package generator builds an OpenAPI document from annotated Go sources.
//
// A [Generator] expands its inputs into files, extracts the documentation
// blocks of each file, parses the annotations they contain into nodes and
// runs the [processors.Pipeline] over the merged [node.Document]:
//
//	g := generator.NewGenerator(generator.WithStrict(true))
//	err := g.SetConfig([]string{"operationId.hash=false"})
//	if err != nil {
//		return err
//	}
//	res, err := g.Generate("./api")
//	if err != nil {
//		return err
//	}
//	out, err := res.Marshal(generator.FormatYAML)
//
// Files are extracted and parsed concurrently, but results are merged in
// file order so the output is the same for any [WithJobs] value.
//
// [Config] binds generator settings to CLI flags, OAGEN_* environment
// variables and a YAML or TOML config file (see [ConfigSchema]).
package generator
