// Package lawdex provides a Go client for the lawdex retrieval service.
//
// The service answers municipal legal questions over a set of document
// collections and exposes raw similarity search alongside.
//
//	client := lawdex.New("http://localhost:8080",
//	    lawdex.WithAPIKey("secret"),
//	)
//
//	result, _ := client.Ask(ctx, "선거법 위반 사례를 알려주세요", "law")
//	hits, _ := client.Search(ctx, "기부행위 제한", "press_release", 5)
package lawdex
