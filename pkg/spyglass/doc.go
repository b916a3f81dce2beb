// Package spyglass provides a client for browsing and searching huge log
// archives without loading whole files into memory.
//
// Quick start:
//
//	c, err := spyglass.New(spyglass.WithBaseURL("https://logs.example.com"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	v, _ := c.ViewFile(ctx, "production/app.log")
//	defer v.Close()
//	lines := v.Lines(ctx, 0, 50) // first screen, fetched on demand
//
//	set, _ := c.Search(ctx, "status:500", 0)
//	fmt.Println(set.Total, set.Truncated)
//
// The Client is safe for concurrent use. Create once, reuse across
// requests.
package spyglass
