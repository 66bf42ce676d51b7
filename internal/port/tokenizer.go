package port

type Tokenizer interface {
	Tokenize(text string) []string

	// Features returns weighted terms and adjacent term pairs.
	Features(text string) map[string]float64
}
