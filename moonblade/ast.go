package moonblade

// Node is any expression AST node, per spec.md §3: Literal | Column |
// Variable | Call | Lambda | If | UnaryOp | BinaryOp.
type Node interface {
	astNode()
}

// LiteralNode is a constant value baked into the AST at parse time.
type LiteralNode struct {
	Value Value
}

func (LiteralNode) astNode() {}

// ColumnRefKind distinguishes the three ways a column can be referenced.
type ColumnRefKind int

const (
	ByName ColumnRefKind = iota
	ByIndex
	AllMatching
)

// ColumnNode references a field by name (with optional occurrence),
// absolute index, or glob pattern; concretisation resolves it to one or
// more fixed indices.
type ColumnNode struct {
	RefKind       ColumnRefKind
	Name          string
	HasOccurrence bool
	Occurrence    int
	Index         int
	Glob          string

	// Populated by Concretise; evaluation only ever reads these.
	Resolved        bool
	ResolvedIndex   int
	ResolvedIndices []int
}

func (ColumnNode) astNode() {}

// VariableNode references an identifier that is not a known column name;
// it resolves at evaluation time from the caller-supplied bindings (or,
// post-concretisation, may have been reinterpreted as a ColumnNode if the
// name does match a header).
type VariableNode struct {
	Name string
}

func (VariableNode) astNode() {}

// CallNode is a function application, including the pipeline-application
// sugar `a | f(_)`, which the parser desugars into an ordinary Call by
// substituting the piped expression for each `_` argument (or, when
// there is none, prepending it as the first argument).
type CallNode struct {
	Function string
	Args     []Node
}

func (CallNode) astNode() {}

// LambdaNode is an inline function literal: params => body.
type LambdaNode struct {
	Params []string
	Body   Node
}

func (LambdaNode) astNode() {}

// IfNode is a conditional expression: if(cond, then, else?).
type IfNode struct {
	Cond Node
	Then Node
	Else Node
}

func (IfNode) astNode() {}

// UnaryOpNode applies a unary operator (-, !) to an operand.
type UnaryOpNode struct {
	Op      string
	Operand Node
}

func (UnaryOpNode) astNode() {}

// BinaryOpNode applies a binary operator to two operands.
type BinaryOpNode struct {
	Op    string
	Left  Node
	Right Node
}

func (BinaryOpNode) astNode() {}

// NamedNode wraps an expression with an explicit output name: `expr as
// name`. Only meaningful at the top level of an aggregation/selection
// spec; nested occurrences are a no-op wrapper evaluated as Inner.
type NamedNode struct {
	Inner Node
	Name  string
}

func (NamedNode) astNode() {}
