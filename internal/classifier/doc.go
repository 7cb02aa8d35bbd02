// Package classifier asks a remote LLM provider which category a file belongs
// to, using only the file's name, MIME type, and creation date.
//
// Three providers are supported: Claude through the Anthropic Messages API,
// OpenAI, and Groq through its OpenAI-compatible endpoint. Each provider is a
// Backend that issues exactly one request per call. Classifier wraps a backend
// with prompt construction and reply parsing, and it never fails a run: any
// transport error, refusal, or unexpected reply is logged and mapped to the
// "other" category. Only construction with an unsupported provider or a
// missing API key is a hard error.
package classifier
