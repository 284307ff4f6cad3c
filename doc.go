/*
Package pkiviz is an interactive map of Public Key Infrastructure.

It shows the entities of a PKI (certificate authorities, certificates, keys,
signing requests, revocation mechanisms, trust stores and chains), how they
relate, and the OpenSSL commands that produce or inspect each of them. Nothing
is executed: commands are reference text that can be copied.

# Modes

Full mode lays out the whole catalog with a force simulation. Beginner mode
shows one guided flow at a time on a fixed layout and can auto-play it, one
step every two seconds, with past, current and upcoming steps styled apart.

# Usage

	viz, err := pkiviz.New()
	if err != nil {
		log.Fatal(err)
	}
	defer viz.Close()

	ctx := context.Background()
	_ = viz.Viewer().SelectNode(ctx, "root-ca")
	fmt.Println(viz.Viewer().Panel().Markdown())

The same viewer backs the `pkiviz` command: an interactive terminal explorer,
an HTTP server with SVG frames and Server-Sent Events, and an MCP server.
*/
package pkiviz
