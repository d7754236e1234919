package scenario

// Program is the top-level parse result: an ordered list of statements.
type Program struct {
	Statements []*Statement `@@*`
}

// Statement is one of the four scenario statement kinds.
type Statement struct {
	Parameter  *ParameterStmt  `  @@`
	Constraint *ConstraintStmt `| @@`
	Target     *TargetStmt     `| @@`
	Test       *TestStmt       `| @@`
}

// ParameterStmt declares a tunable parameter and its bounds:
// parameter <name> = <value> [<min>, <max>]
type ParameterStmt struct {
	Name  string  `"parameter" @Ident "="`
	Value float64 `@Number`
	Min   float64 `"[" @Number ","`
	Max   float64 `@Number "]"`
}

// ConstraintStmt declares an algebraic relationship on a parameter:
// constraint <target> <rel> <expr>
type ConstraintStmt struct {
	Target       string `"constraint" @Ident`
	Relationship string `@Rel`
	Expr         string `@ExprText`
}

// TargetStmt declares a performance objective:
// target <metric> = <value> weight=<w> mode=<min|max|exact> [unit=<u>]
type TargetStmt struct {
	Metric string  `"target" @Ident "="`
	Value  float64 `@Number`
	Weight float64 `"weight" "=" @Number`
	Mode   string  `"mode" "=" @("min" | "max" | "exact")`
	Unit   string  `["unit" "=" @Ident]`
}

// TestStmt declares a bundle of simulator commands executed per cost
// evaluation: test <name> [environment(<k>=<v>, ...)] { <spice lines...> }
type TestStmt struct {
	Name        string            `"test" @Ident`
	Environment []*EnvBindingStmt `["environment" "(" @@ ("," @@)* ")"]`
	Lines       []string          `"{" @SpiceLine* "}"`
}

// EnvBindingStmt is one `name=value` pair inside a test's environment(...).
type EnvBindingStmt struct {
	Name  string `@Ident "="`
	Value string `@(Ident | Number)`
}
