package network

const (
	// FloodlightMode talks to a Floodlight controller over REST.
	FloodlightMode = "floodlight"
	// FakeMode keeps topology and flows in memory.
	FakeMode = "fake"
)
