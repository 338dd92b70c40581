package brain

// FakeGenerator returns a fixed line or error; used by tests and the
// headless mode.
type FakeGenerator struct {
	Line string
	Err  error

	Requests []string
	Contexts []string
}

func NewFake(line string, err error) *FakeGenerator {
	return &FakeGenerator{Line: line, Err: err}
}

func (f *FakeGenerator) Name() string { return "fake" }

func (f *FakeGenerator) Generate(request, context string) (string, error) {
	f.Requests = append(f.Requests, request)
	f.Contexts = append(f.Contexts, context)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Line, nil
}
