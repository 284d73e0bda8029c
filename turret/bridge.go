package turret

// launchRequest carries a single pending launch from the command path to
// the sequencer. At most one request is ever pending.
type launchRequest chan struct{}

func newLaunchRequest() launchRequest { return make(launchRequest, 1) }

// post returns false if a request was already pending.
func (r launchRequest) post() bool {
	select {
	case r <- struct{}{}:
		return true
	default:
		return false
	}
}

func (r launchRequest) take() bool {
	select {
	case <-r:
		return true
	default:
		return false
	}
}

func (r launchRequest) pending() bool { return len(r) > 0 }

func (r launchRequest) drain() { r.take() }
