// Package processors turns the nodes parsed from documentation blocks into a
// complete document.
//
// A [Pipeline] runs [Pass] values in order. [Default] returns the built-in
// passes; callers may insert, remove or replace passes between runs, and
// configure them through a [Config]:
//
//	p := processors.Default()
//	cfg, err := processors.NormalizeConfig([]string{"operationId.hash=false"})
//	if err != nil {
//		return err
//	}
//	p.Configure(cfg)
//	p.Process(doc, reporter)
package processors
