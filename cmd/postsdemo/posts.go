package main

import (
	"github.com/ThalesGroup/apicall"
	"strconv"
)

// Post is a blog post as served by the API.
type Post struct {
	UserID int    `json:"userId"`
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// PostsEndpoint lists all posts.
func PostsEndpoint(baseURL string) apicall.Endpoint[[]Post] {
	return apicall.MustEndpoint[[]Post](apicall.GET, baseURL, "posts",
		apicall.Accept(apicall.MediaTypeJSON),
	)
}

// PostEndpoint fetches one post.
func PostEndpoint(baseURL string, id int) apicall.Endpoint[Post] {
	return apicall.MustEndpoint[Post](apicall.GET, baseURL, "posts/"+strconv.Itoa(id),
		apicall.Accept(apicall.MediaTypeJSON),
	)
}
