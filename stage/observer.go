package stage

// Observer receives progress events so a front end can draw them. Stages
// call Begin once, Step once per item and End once.
type Observer interface {
	Begin(stage string, total int)
	Step(path string)
	End()
}

type nopObserver struct{}

func (nopObserver) Begin(string, int) {}
func (nopObserver) Step(string)       {}
func (nopObserver) End()              {}

func observerOr(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
