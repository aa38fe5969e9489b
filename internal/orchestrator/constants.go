package orchestrator

// Detection event channel buffer. Consumers that fall behind lose
// intermediate frames, never the loop.
const EventBuffer = 16
