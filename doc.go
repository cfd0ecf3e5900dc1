/*
Package apicall is a Go library for calling typed HTTP APIs.  It's a thin layer over the
http package: each call is described by an endpoint, and each endpoint knows the type
its response decodes into.

	type Post struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}

	getPost := apicall.MustEndpoint[Post](apicall.GET, "https://jsonplaceholder.typicode.com", "posts/1")

	post, err := apicall.Execute(ctx, &apicall.Client{}, getPost)
	if err != nil {
		return err
	}
	fmt.Println(post.Title)

A call runs in four steps, and stops at the first failure:

 1. build: the endpoint's base URL, path, query, headers and body are composed into an
    *http.Request by the client's RequestBuilder
 2. send: the request is sent by the client's Doer, wrapped by its Middleware
 3. validate: statuses outside [200, 300) fail the call
 4. decode: the response body is decoded into the endpoint's response type by the
    client's Unmarshaler

Every failure is an *Error, with one of five kinds:

	_, err := apicall.Execute(ctx, client, getPost)
	switch {
	case errors.Is(err, apicall.ErrInvalidTarget): // the URL could not be composed
	case errors.Is(err, apicall.ErrRequestFailed): // apicall.StatusCode(err) has the status
	case errors.Is(err, apicall.ErrDecodingFailed): // errors.Unwrap(err) has the decoder's error
	case errors.Is(err, apicall.ErrTransportFailed): // errors.Unwrap(err) has the transport's error
	case errors.Is(err, apicall.ErrUnknown): // the transport returned no HTTP status
	}

# Endpoints

Endpoints are immutable values, built with functional Options, which set headers, query
parameters, and the body:

	createPost := apicall.MustEndpoint[Post](apicall.POST, baseURL, "posts",
		apicall.BearerAuth(token),
		apicall.JSONBody(Post{Title: "hello"}),
	)

	page2, err := listPosts.With(apicall.Query("page", "2"))

# Clients

A Client is configured by setting its fields, or with ClientOptions.  The zero value
uses http.DefaultClient, and decodes JSON.  The httpclient package builds production
*http.Clients, and adapts resty clients:

	hc, _ := httpclient.New(httpclient.Timeout(10 * time.Second))

	client, err := apicall.NewClient(
		apicall.WithDoer(hc),
		apicall.WithLogger(zapLogger),
		apicall.Use(apicall.DumpToStdout()),
	)

Hooks observe calls without affecting them.  LogHooks logs requests and responses to a
zap logger, and Inspector captures them in tests.

# Services

Call sites which only need to make requests can depend on the one-method Requester
interface.  Service implements it on top of a client:

	svc := apicall.NewService(client)
	post, err := apicall.Request(ctx, svc, getPost)

# Testing

The apicalltest package has a mock transport, which dispatches requests to handlers
registered by host name, so tests never touch the network:

	reg := apicalltest.NewRegistry()
	reg.Register("jsonplaceholder.typicode.com", apicalltest.RespondJSON(200, Post{ID: 1}))

	client := apicalltest.NewClient(reg)

The httptestutil package records what an httptest.Server received and sent back.
*/
package apicall
