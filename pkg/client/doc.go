// Package client is a Go client for the learnscout HTTP API.
//
//	c, _ := client.New("http://localhost:8080", client.WithTimeout(30*time.Second))
//	res, _ := c.Search(ctx, "react hooks", client.PlatformAll)
//	for _, it := range res.Items {
//	    fmt.Println(it.Relevance, it.Title, it.URL)
//	}
//
// Tags, link previews, token usage and health are exposed the same way:
//
//	tags, _ := c.AddTag(ctx, resourceID, "beginner")
//	card, _ := c.Preview(ctx, "https://go.dev/tour")
package client
