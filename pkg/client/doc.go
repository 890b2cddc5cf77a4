// Package client is the Go SDK for the WIU (Where's It Up) network testing API.
//
// It lists the edge servers tests can run from, submits jobs (dig, ping,
// http, trace and friends against a URL, from chosen locations) and
// retrieves their results.
//
// # Connecting
//
// Create a Client with your API client ID and token, both hexadecimal:
//
//	c, err := client.New(os.Getenv("WIU_ID"), os.Getenv("WIU_TOKEN"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Submitting a job
//
// Ping google.com from Denver and London:
//
//	jobID, err := c.Submit(ctx, "google.com", []string{"denver", "london"}, []string{"ping"}, nil)
//
// Arguments are checked before anything is sent. A URL without a scheme is
// treated as http://; server names must be lowercase letters; unknown test
// types are ignored. When nothing usable is left the call fails with a
// *ValidationError.
//
// A request already encoded as JSON can be submitted as is:
//
//	jobID, err := c.SubmitRaw(ctx, []byte(`{"uri": "google.com", "sources": ["denver"], "tests": ["dig"]}`))
//
// # Retrieving results
//
// Jobs run asynchronously. The library does not poll; callers that want the
// final result retrieve the job until it is no longer in progress:
//
//	job, err := c.Retrieve(ctx, jobID)
//	for err == nil && job.InProgress() {
//	    time.Sleep(time.Second)
//	    job, err = c.Retrieve(ctx, jobID)
//	}
//
// # Caching
//
// NewCaching wraps any API with a read-through cache for the server list and
// finished jobs:
//
//	api := client.NewCaching(c, cache.NewMemory(10*time.Minute))
//
// or, shared between processes:
//
//	rc, err := cache.NewRedisFromURL(ctx, "redis://localhost:6379/0")
//	api := client.NewCaching(c, rc, client.WithTTL(time.Hour))
//
// # Errors
//
// Input problems are *ValidationError. Error statuses from the API are
// *APIError, carrying the HTTP status and the API's message. Failing to get
// any response at all wraps ErrTransport:
//
//	var apiErr *client.APIError
//	switch {
//	case errors.As(err, &apiErr):
//	    log.Printf("API said %d: %s", apiErr.StatusCode, apiErr.Detail)
//	case errors.Is(err, client.ErrTransport):
//	    log.Printf("could not reach the API: %v", err)
//	}
package client
