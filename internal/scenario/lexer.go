package scenario

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes a scenario file. It follows a stateful-lexer idiom but
// adds two pushed states: ExprTail, entered
// right after a constraint's relationship operator to capture the rest of
// the line as one raw expression token, and Spice, entered at a test
// block's opening brace to capture SPICE code lines verbatim until the
// matching close brace.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `#[^\n]*`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Number", `-?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?`, nil},
		{"Rel", `==|<=|>=|<|>`, lexer.Push("ExprTail")},
		{"Operator", `=`, nil},
		{"Punct", `[\[\](),:]`, nil},
		{"LBrace", `\{`, lexer.Push("Spice")},
	},
	"ExprTail": {
		{"ExprText", `[^\n]+`, lexer.Pop()},
	},
	"Spice": {
		{"RBrace", `\}`, lexer.Pop()},
		{"SpiceWhitespace", `[ \t\r\n]+`, nil},
		{"SpiceLine", `[^\n}]+`, nil},
	},
})
