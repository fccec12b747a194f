// Package classdex embeds the classdex course search engine in a Go program.
//
// The client talks to Redis Stack directly, with no HTTP server in between.
// Terms are loaded from fixture records and searched with the same loose
// filter resolution the REST and MCP surfaces use.
//
//	client, _ := classdex.New(ctx, classdex.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	_, _ = client.Load(ctx, "1263", records, false)
//
//	page, err := client.Search(ctx, classdex.Query{
//	    Term:    "1263",
//	    Subject: "computer science",
//	    Avoid:   []classdex.AvoidSpec{{Days: []string{"Friday"}}},
//	})
//
// Resolution misses come back as errors carrying suggestions:
//
//	var nm *classdex.NoMatchError
//	if errors.As(err, &nm) {
//	    fmt.Println("did you mean", nm.Suggestions)
//	}
package classdex
