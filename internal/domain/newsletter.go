package domain

// Newsletter is one issue to be fanned out to confirmed subscribers.
type Newsletter struct {
	Title string
	Text  string
	HTML  string
}
