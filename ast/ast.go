// Package ast defines the parsed-program representation consumed by the
// checker and the evaluator. Parsing itself lives upstream in the host; this
// package is the seam.
package ast

import (
	"bytes"
	"fmt"
	"strings"
)

// Span is a source position attached to every node. Line and Col are
// 1-based; a zero Span means "unknown".
type Span struct {
	Line int
	Col  int
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Col)
}

// The base Node interface
type Node interface {
	Pos() Span
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) Pos() Span {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return Span{}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// ParamKind distinguishes how a parameter binds its arguments.
type ParamKind int

const (
	PositionalParam ParamKind = iota
	VariadicParam
	KwargsParam
)

// Parameter is a function or lambda parameter: a name, an optional type
// hint, an optional default expression, and a binding kind.
type Parameter struct {
	Name    string
	Type    string
	Default Expression
	Kind    ParamKind
}

func (p *Parameter) String() string {
	var out bytes.Buffer
	switch p.Kind {
	case VariadicParam:
		out.WriteString("*")
	case KwargsParam:
		out.WriteString("**")
	}
	out.WriteString(p.Name)
	if p.Type != "" {
		out.WriteString(": ")
		out.WriteString(p.Type)
	}
	if p.Default != nil {
		out.WriteString(" = ")
		out.WriteString(p.Default.String())
	}
	return out.String()
}

// VarStatement declares a new binding in the current scope frame.
type VarStatement struct {
	Span  Span
	Name  string
	Type  string // optional type annotation
	Value Expression
}

func (vs *VarStatement) statementNode() {}
func (vs *VarStatement) Pos() Span      { return vs.Span }
func (vs *VarStatement) String() string {
	var out bytes.Buffer
	out.WriteString("var ")
	out.WriteString(vs.Name)
	if vs.Type != "" {
		out.WriteString(": ")
		out.WriteString(vs.Type)
	}
	if vs.Value != nil {
		out.WriteString(" = ")
		out.WriteString(vs.Value.String())
	}
	return out.String()
}

// AssignStatement rebinds an existing name, or writes through an index or
// attribute target.
type AssignStatement struct {
	Span   Span
	Target Expression // *Identifier, *IndexExpression or *AttrExpression
	Value  Expression
}

func (as *AssignStatement) statementNode() {}
func (as *AssignStatement) Pos() Span      { return as.Span }
func (as *AssignStatement) String() string {
	return as.Target.String() + " = " + as.Value.String()
}

type ExpressionStatement struct {
	Span       Span
	Expression Expression
}

func (es *ExpressionStatement) statementNode() {}
func (es *ExpressionStatement) Pos() Span      { return es.Span }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

type BlockStatement struct {
	Span       Span
	Statements []Statement
}

func (bs *BlockStatement) statementNode() {}
func (bs *BlockStatement) Pos() Span      { return bs.Span }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{")
	for _, s := range bs.Statements {
		out.WriteString(" ")
		out.WriteString(s.String())
	}
	out.WriteString(" }")
	return out.String()
}

type IfStatement struct {
	Span Span
	Cond Expression
	Then *BlockStatement
	Else Statement // *BlockStatement, *IfStatement or nil
}

func (is *IfStatement) statementNode() {}
func (is *IfStatement) Pos() Span      { return is.Span }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if ")
	out.WriteString(is.Cond.String())
	out.WriteString(" ")
	out.WriteString(is.Then.String())
	if is.Else != nil {
		out.WriteString(" else ")
		out.WriteString(is.Else.String())
	}
	return out.String()
}

type WhileStatement struct {
	Span Span
	Cond Expression
	Body *BlockStatement
}

func (ws *WhileStatement) statementNode() {}
func (ws *WhileStatement) Pos() Span      { return ws.Span }
func (ws *WhileStatement) String() string {
	return "while " + ws.Cond.String() + " " + ws.Body.String()
}

// ForStatement iterates a list, dict, set, string, range or generator.
// Value names the second loop variable for dict iteration (key, value).
type ForStatement struct {
	Span     Span
	Name     string
	Value    string // optional second variable
	Iterable Expression
	Body     *BlockStatement
}

func (fs *ForStatement) statementNode() {}
func (fs *ForStatement) Pos() Span      { return fs.Span }
func (fs *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for ")
	out.WriteString(fs.Name)
	if fs.Value != "" {
		out.WriteString(", ")
		out.WriteString(fs.Value)
	}
	out.WriteString(" in ")
	out.WriteString(fs.Iterable.String())
	out.WriteString(" ")
	out.WriteString(fs.Body.String())
	return out.String()
}

type FunctionStatement struct {
	Span       Span
	Name       string
	Parameters []*Parameter
	Body       *BlockStatement
}

func (fs *FunctionStatement) statementNode() {}
func (fs *FunctionStatement) Pos() Span      { return fs.Span }
func (fs *FunctionStatement) String() string {
	params := []string{}
	for _, p := range fs.Parameters {
		params = append(params, p.String())
	}
	return "def " + fs.Name + "(" + strings.Join(params, ", ") + ") " + fs.Body.String()
}

type ReturnStatement struct {
	Span  Span
	Value Expression // nil means `return None`
}

func (rs *ReturnStatement) statementNode() {}
func (rs *ReturnStatement) Pos() Span      { return rs.Span }
func (rs *ReturnStatement) String() string {
	if rs.Value != nil {
		return "return " + rs.Value.String()
	}
	return "return"
}

type BreakStatement struct {
	Span Span
}

func (bs *BreakStatement) statementNode() {}
func (bs *BreakStatement) Pos() Span      { return bs.Span }
func (bs *BreakStatement) String() string { return "break" }

type ContinueStatement struct {
	Span Span
}

func (cs *ContinueStatement) statementNode() {}
func (cs *ContinueStatement) Pos() Span      { return cs.Span }
func (cs *ContinueStatement) String() string { return "continue" }

// YieldStatement suspends the enclosing generator with a value. A function
// whose body contains a yield is a generator function.
type YieldStatement struct {
	Span  Span
	Value Expression
}

func (ys *YieldStatement) statementNode() {}
func (ys *YieldStatement) Pos() Span      { return ys.Span }
func (ys *YieldStatement) String() string {
	if ys.Value != nil {
		return "yield " + ys.Value.String()
	}
	return "yield"
}

// StructFieldDef is one declared field of a struct statement.
type StructFieldDef struct {
	Name    string
	Type    string // optional annotation
	Default Expression
}

func (f *StructFieldDef) String() string {
	var out bytes.Buffer
	out.WriteString(f.Name)
	if f.Type != "" {
		out.WriteString(": ")
		out.WriteString(f.Type)
	}
	if f.Default != nil {
		out.WriteString(" = ")
		out.WriteString(f.Default.String())
	}
	return out.String()
}

type StructStatement struct {
	Span   Span
	Name   string
	Fields []*StructFieldDef
}

func (ss *StructStatement) statementNode() {}
func (ss *StructStatement) Pos() Span      { return ss.Span }
func (ss *StructStatement) String() string {
	fields := []string{}
	for _, f := range ss.Fields {
		fields = append(fields, f.String())
	}
	return "struct " + ss.Name + " { " + strings.Join(fields, ", ") + " }"
}

// ImportName selects one function from a native module, optionally aliased.
type ImportName struct {
	Name  string
	Alias string
}

func (in *ImportName) String() string {
	if in.Alias != "" && in.Alias != in.Name {
		return in.Name + " as " + in.Alias
	}
	return in.Name
}

// ImportStatement binds native-module functions into the current scope.
// With no names the whole module is bound as a dict under its own name.
type ImportStatement struct {
	Span   Span
	Module string
	Names  []*ImportName
}

func (is *ImportStatement) statementNode() {}
func (is *ImportStatement) Pos() Span      { return is.Span }
func (is *ImportStatement) String() string {
	if len(is.Names) == 0 {
		return "import " + is.Module
	}
	names := []string{}
	for _, n := range is.Names {
		names = append(names, n.String())
	}
	return "from " + is.Module + " import " + strings.Join(names, ", ")
}

// Expressions

type Identifier struct {
	Span Span
	Name string
}

func (i *Identifier) expressionNode() {}
func (i *Identifier) Pos() Span       { return i.Span }
func (i *Identifier) String() string  { return i.Name }

type NoneLiteral struct {
	Span Span
}

func (n *NoneLiteral) expressionNode() {}
func (n *NoneLiteral) Pos() Span       { return n.Span }
func (n *NoneLiteral) String() string  { return "None" }

type BoolLiteral struct {
	Span  Span
	Value bool
}

func (b *BoolLiteral) expressionNode() {}
func (b *BoolLiteral) Pos() Span       { return b.Span }
func (b *BoolLiteral) String() string {
	if b.Value {
		return "True"
	}
	return "False"
}

type IntLiteral struct {
	Span  Span
	Value int64
}

func (i *IntLiteral) expressionNode() {}
func (i *IntLiteral) Pos() Span       { return i.Span }
func (i *IntLiteral) String() string  { return fmt.Sprintf("%d", i.Value) }

type FloatLiteral struct {
	Span  Span
	Value float64
}

func (f *FloatLiteral) expressionNode() {}
func (f *FloatLiteral) Pos() Span       { return f.Span }
func (f *FloatLiteral) String() string  { return fmt.Sprintf("%g", f.Value) }

type StringLiteral struct {
	Span  Span
	Value string
}

func (s *StringLiteral) expressionNode() {}
func (s *StringLiteral) Pos() Span       { return s.Span }
func (s *StringLiteral) String() string  { return fmt.Sprintf("%q", s.Value) }

type ListLiteral struct {
	Span     Span
	Elements []Expression
}

func (l *ListLiteral) expressionNode() {}
func (l *ListLiteral) Pos() Span       { return l.Span }
func (l *ListLiteral) String() string {
	elements := []string{}
	for _, e := range l.Elements {
		elements = append(elements, e.String())
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

// DictLiteral keeps keys and values as parallel slices so insertion order
// survives into the runtime Dict.
type DictLiteral struct {
	Span   Span
	Keys   []Expression
	Values []Expression
}

func (d *DictLiteral) expressionNode() {}
func (d *DictLiteral) Pos() Span       { return d.Span }
func (d *DictLiteral) String() string {
	pairs := []string{}
	for i := range d.Keys {
		pairs = append(pairs, d.Keys[i].String()+": "+d.Values[i].String())
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

type SetLiteral struct {
	Span     Span
	Elements []Expression
}

func (s *SetLiteral) expressionNode() {}
func (s *SetLiteral) Pos() Span       { return s.Span }
func (s *SetLiteral) String() string {
	elements := []string{}
	for _, e := range s.Elements {
		elements = append(elements, e.String())
	}
	return "{" + strings.Join(elements, ", ") + "}"
}

type PrefixExpression struct {
	Span     Span
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode() {}
func (pe *PrefixExpression) Pos() Span       { return pe.Span }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

type InfixExpression struct {
	Span     Span
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode() {}
func (ie *InfixExpression) Pos() Span       { return ie.Span }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// ConditionalExpression is `then if cond else otherwise`.
type ConditionalExpression struct {
	Span Span
	Cond Expression
	Then Expression
	Else Expression
}

func (ce *ConditionalExpression) expressionNode() {}
func (ce *ConditionalExpression) Pos() Span       { return ce.Span }
func (ce *ConditionalExpression) String() string {
	return "(" + ce.Then.String() + " if " + ce.Cond.String() + " else " + ce.Else.String() + ")"
}

// KeywordArg is a named argument at a call site.
type KeywordArg struct {
	Name  string
	Value Expression
}

type CallExpression struct {
	Span     Span
	Function Expression
	Args     []Expression
	Kwargs   []*KeywordArg
}

func (ce *CallExpression) expressionNode() {}
func (ce *CallExpression) Pos() Span       { return ce.Span }
func (ce *CallExpression) String() string {
	args := []string{}
	for _, a := range ce.Args {
		args = append(args, a.String())
	}
	for _, kw := range ce.Kwargs {
		args = append(args, kw.Name+"="+kw.Value.String())
	}
	return ce.Function.String() + "(" + strings.Join(args, ", ") + ")"
}

type IndexExpression struct {
	Span  Span
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode() {}
func (ie *IndexExpression) Pos() Span       { return ie.Span }
func (ie *IndexExpression) String() string {
	return "(" + ie.Left.String() + "[" + ie.Index.String() + "])"
}

type AttrExpression struct {
	Span Span
	Left Expression
	Name string
}

func (ae *AttrExpression) expressionNode() {}
func (ae *AttrExpression) Pos() Span       { return ae.Span }
func (ae *AttrExpression) String() string {
	return ae.Left.String() + "." + ae.Name
}

// LambdaLiteral is an anonymous single-expression function.
type LambdaLiteral struct {
	Span       Span
	Parameters []*Parameter
	Body       Expression
}

func (ll *LambdaLiteral) expressionNode() {}
func (ll *LambdaLiteral) Pos() Span       { return ll.Span }
func (ll *LambdaLiteral) String() string {
	params := []string{}
	for _, p := range ll.Parameters {
		params = append(params, p.String())
	}
	return "lambda " + strings.Join(params, ", ") + ": " + ll.Body.String()
}
