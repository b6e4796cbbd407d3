// Package client maintains a connection to a snapserver's control endpoint.
// It sends typed commands, classifies inbound frames, and keeps a state cache
// in sync with the server.
//
// A connection survives transport failures: any send or receive that finds
// the connection down triggers a single shared reconnect with exponential
// backoff, observable through the lifecycle callbacks. In-flight correlation
// state survives a reconnect; replies lost to the old connection simply never
// arrive, and callers typically answer the connect callback with a full
// status request.
//
// Send and Receive may be called concurrently with each other, the usual
// shape being one send loop and one receive loop. Receive itself must not be
// called from more than one goroutine.
package client
