package logger

// Exported for white-box tests of the error formatting.
var (
	ErrorChain  = errorChain
	FormatChain = formatChain
)
