// Copyright 2026 Oliver Eikemeier. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package scopes

import (
	"errors"
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/token"

	"fillmore-labs.com/hoistguard/rewrite"
)

// ErrMalformedScope reports a structurally inconsistent input program.
var ErrMalformedScope = errors.New("malformed scope structure")

const varKeywordLen = len("var")

// Build constructs the scope graph and binding table in a single traversal.
// Identifier references are recorded during the walk and resolved against
// the completed binding table afterwards, so hoisted declarations are
// reachable from references that precede them textually.
func Build(program *ast.Program) (*Graph, error) {
	if program == nil {
		return nil, fmt.Errorf("nil program: %w", ErrMalformedScope)
	}

	b := &builder{g: &Graph{}, base: 1}
	if f := program.File; f != nil {
		b.src = f.Source()
		b.base = f.Base()
	}

	root := b.newScope(KindProgram, NoScope, program.Idx0(), program.Idx1())
	for _, s := range program.Body {
		b.stmt(s, root)
	}

	b.resolve()
	b.finish()

	return b.g, nil
}

type builder struct {
	g *Graph

	// src and base mirror the parsed file; the source text is consulted
	// where the parser does not record a keyword position.
	src  string
	base int

	// pending holds identifier occurrences awaiting resolution, in
	// traversal order.
	pending []pendingRef

	// withs are the extents of with statement bodies.
	withs []span
}

type pendingRef struct {
	name  string
	pos   file.Idx
	scope ID
	write bool
}

type span struct {
	from, to file.Idx
}

type refMode uint8

const (
	refRead refMode = iota
	refWrite
)

func (b *builder) newScope(kind Kind, parent ID, pos, end file.Idx) ID {
	id := ID(len(b.g.scopes))
	b.g.scopes = append(b.g.scopes, Scope{
		ID:     id,
		Parent: parent,
		Kind:   kind,
		Names:  make(map[string]BindingID),
		Pos:    pos,
		End:    end,
	})

	if parent != NoScope {
		b.g.scopes[parent].Children = append(b.g.scopes[parent].Children, id)
	}

	return id
}

// newBinding appends a binding without registering it in any name table.
func (b *builder) newBinding(name string, scope ID, kind DeclKind, site DeclSite, pattern bool) BindingID {
	id := BindingID(len(b.g.bindings))
	b.g.bindings = append(b.g.bindings, Binding{
		ID:            id,
		Name:          name,
		Scope:         scope,
		Kind:          kind,
		Sites:         []DeclSite{site},
		Pattern:       pattern,
		EnclosingLoop: NoScope,
	})

	return id
}

// varKeywordAt locates the var keyword preceding the binding target at
// pos, scanning backwards over whitespace in the source text. It returns 0
// when the text does not confirm the keyword; such sites are never
// rewritten.
func (b *builder) varKeywordAt(pos file.Idx) file.Idx {
	i := int(pos) - b.base
	if i < 0 || i > len(b.src) {
		return 0
	}

	for i > 0 && isSpace(b.src[i-1]) {
		i--
	}

	if i >= varKeywordLen && b.src[i-varKeywordLen:i] == "var" {
		return file.Idx(i - varKeywordLen + b.base)
	}

	return 0
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n':
		return true
	default:
		return false
	}
}

// hoistTarget is the attachment step for function-scoped declarations: the
// nearest enclosing function or program scope, skipping blocks and loops.
func (b *builder) hoistTarget(cur ID) ID {
	for s := cur; ; s = b.g.scopes[s].Parent {
		if k := b.g.scopes[s].Kind; k == KindFunction || k == KindProgram {
			return s
		}
	}
}

func (b *builder) stmt(s ast.Statement, cur ID) {
	switch n := s.(type) {
	case nil:

	case *ast.BlockStatement:
		inner := b.newScope(KindBlock, cur, n.Idx0(), n.Idx1())
		for _, st := range n.List {
			b.stmt(st, inner)
		}

	case *ast.VariableStatement:
		for _, bd := range n.List {
			b.varBinding(n.Var, bd, cur)
		}

	case *ast.LexicalDeclaration:
		for _, bd := range n.List {
			b.lexicalBinding(n.Idx, n.Token == token.CONST, bd, cur)
		}

	case *ast.FunctionDeclaration:
		b.functionDecl(n.Function, cur)

	case *ast.ExpressionStatement:
		b.expr(n.Expression, cur, refRead)

	case *ast.IfStatement:
		b.expr(n.Test, cur, refRead)
		b.stmt(n.Consequent, cur)
		b.stmt(n.Alternate, cur)

	case *ast.ForStatement:
		loop := b.newScope(KindLoop, cur, n.Idx0(), n.Idx1())
		b.forInit(n.Initializer, loop)
		b.expr(n.Test, loop, refRead)
		b.expr(n.Update, loop, refRead)
		b.stmt(n.Body, loop)

	case *ast.ForInStatement:
		loop := b.newScope(KindLoop, cur, n.Idx0(), n.Idx1())
		b.forInto(n.Into, loop)
		b.expr(n.Source, loop, refRead)
		b.stmt(n.Body, loop)

	case *ast.ForOfStatement:
		loop := b.newScope(KindLoop, cur, n.Idx0(), n.Idx1())
		b.forInto(n.Into, loop)
		b.expr(n.Source, loop, refRead)
		b.stmt(n.Body, loop)

	case *ast.WhileStatement:
		loop := b.newScope(KindLoop, cur, n.Idx0(), n.Idx1())
		b.expr(n.Test, loop, refRead)
		b.stmt(n.Body, loop)

	case *ast.DoWhileStatement:
		loop := b.newScope(KindLoop, cur, n.Idx0(), n.Idx1())
		b.stmt(n.Body, loop)
		b.expr(n.Test, loop, refRead)

	case *ast.SwitchStatement:
		b.expr(n.Discriminant, cur, refRead)

		// One block scope spans all cases.
		body := b.newScope(KindBlock, cur, n.Idx0(), n.Idx1())
		for _, c := range n.Body {
			b.expr(c.Test, body, refRead)
			for _, st := range c.Consequent {
				b.stmt(st, body)
			}
		}

	case *ast.TryStatement:
		b.stmt(n.Body, cur)
		if n.Catch != nil {
			b.catchClause(n.Catch, cur)
		}
		if n.Finally != nil {
			b.stmt(n.Finally, cur)
		}

	case *ast.WithStatement:
		b.expr(n.Object, cur, refRead)
		b.withs = append(b.withs, span{from: n.Body.Idx0(), to: n.Body.Idx1()})
		b.stmt(n.Body, cur)

	case *ast.LabelledStatement:
		b.stmt(n.Statement, cur)

	case *ast.ReturnStatement:
		b.expr(n.Argument, cur, refRead)

	case *ast.ThrowStatement:
		b.expr(n.Argument, cur, refRead)

	default:
		// break, continue, empty, debugger and syntax outside the
		// analysis scope
	}
}

func (b *builder) forInit(init ast.ForLoopInitializer, loop ID) {
	switch n := init.(type) {
	case nil:

	case *ast.ForLoopInitializerExpression:
		b.expr(n.Expression, loop, refRead)

	case *ast.ForLoopInitializerVarDeclList:
		// The parser leaves n.Var unset for loop initializers; the keyword
		// sits before the first declarator.
		kw := b.varKeywordAt(n.List[0].Idx0())
		for _, bd := range n.List {
			b.varBinding(kw, bd, loop)
		}

	case *ast.ForLoopInitializerLexicalDecl:
		d := n.LexicalDeclaration
		for _, bd := range d.List {
			b.lexicalBinding(d.Idx, d.Token == token.CONST, bd, loop)
		}
	}
}

func (b *builder) forInto(into ast.ForInto, loop ID) {
	switch n := into.(type) {
	case *ast.ForIntoVar:
		// The parser does not record the keyword position for for-in/of var
		// clauses; it sits before the binding target.
		kw := b.varKeywordAt(n.Binding.Idx0())
		b.varBinding(kw, n.Binding, loop)

	case *ast.ForDeclaration:
		b.bindTargets(n.Target, loop, DeclSite{
			Keyword: n.Idx,
			End:     n.Target.Idx1(),
			Home:    loop,
		}, lexicalKind(n.IsConst))

	case *ast.ForIntoExpression:
		b.expr(n.Expression, loop, refWrite)
	}
}

func lexicalKind(isConst bool) DeclKind {
	if isConst {
		return DeclConst
	}

	return DeclLet
}

// varBinding attaches one var declarator: the name hoists to the nearest
// function or program scope, the site stays where it was written.
func (b *builder) varBinding(kw file.Idx, bd *ast.Binding, cur ID) {
	site := DeclSite{
		Keyword: kw,
		End:     bd.Idx1(),
		Home:    cur,
		HasInit: bd.Initializer != nil,
	}

	if id, ok := bd.Target.(*ast.Identifier); ok {
		site.Name = id.Idx
		b.declareVar(string(id.Name), site, cur, false)
	} else {
		for _, id := range patternIdents(bd.Target) {
			s := site
			s.Name = id.Idx
			b.declareVar(string(id.Name), s, cur, true)
		}
	}

	b.expr(bd.Initializer, cur, refRead)
}

func (b *builder) declareVar(name string, site DeclSite, cur ID, pattern bool) {
	target := b.hoistTarget(cur)

	if id, ok := b.g.scopes[target].Names[name]; ok {
		ex := &b.g.bindings[id]
		ex.Sites = append(ex.Sites, site)
		ex.Pattern = ex.Pattern || pattern

		if !ex.Kind.FunctionScoped() {
			// var colliding with a block-scoped name in its hoist target
			ex.AddHazard(rewrite.HazardDuplicateBlockBinding)
		}

		if site.HasInit {
			// A repeated declarator's initializer is a plain assignment.
			b.pending = append(b.pending, pendingRef{name: name, pos: site.Name, scope: cur, write: true})
		}

		return
	}

	id := b.newBinding(name, target, DeclVar, site, pattern)
	b.g.scopes[target].Names[name] = id
}

// lexicalBinding attaches one let/const declarator to the current scope.
// Re-declaring a block-scoped name in the same scope is flagged on both
// bindings and never resolved silently.
func (b *builder) lexicalBinding(kw file.Idx, isConst bool, bd *ast.Binding, cur ID) {
	site := DeclSite{
		Keyword: kw,
		End:     bd.Idx1(),
		Home:    cur,
		HasInit: bd.Initializer != nil,
	}
	b.bindTargets(bd.Target, cur, site, lexicalKind(isConst))
	b.expr(bd.Initializer, cur, refRead)
}

// bindTargets declares every name of a binding target in scope cur.
func (b *builder) bindTargets(target ast.BindingTarget, cur ID, site DeclSite, kind DeclKind) {
	if id, ok := target.(*ast.Identifier); ok {
		site.Name = id.Idx
		b.declareBlockScoped(string(id.Name), site, cur, kind, false)

		return
	}

	for _, id := range patternIdents(target) {
		s := site
		s.Name = id.Idx
		b.declareBlockScoped(string(id.Name), s, cur, kind, true)
	}
}

func (b *builder) declareBlockScoped(name string, site DeclSite, cur ID, kind DeclKind, pattern bool) {
	if ex, ok := b.g.scopes[cur].Names[name]; ok {
		b.g.bindings[ex].AddHazard(rewrite.HazardDuplicateBlockBinding)

		dup := b.newBinding(name, cur, kind, site, pattern)
		b.g.bindings[dup].AddHazard(rewrite.HazardDuplicateBlockBinding)

		return
	}

	id := b.newBinding(name, cur, kind, site, pattern)
	b.g.scopes[cur].Names[name] = id
}

// functionDecl hoists the declaration's name, then descends into the literal.
func (b *builder) functionDecl(fn *ast.FunctionLiteral, cur ID) {
	if fn.Name != nil {
		name := string(fn.Name.Name)
		target := b.hoistTarget(cur)
		site := DeclSite{
			Keyword: fn.Idx0(),
			Name:    fn.Name.Idx,
			End:     fn.Idx1(),
			Home:    cur,
			HasInit: true,
		}

		if id, ok := b.g.scopes[target].Names[name]; ok {
			ex := &b.g.bindings[id]
			if ex.Kind.FunctionScoped() {
				// function declarations win over var redeclarations
				ex.Kind = DeclFunction
				ex.Sites = append(ex.Sites, site)
			} else {
				ex.AddHazard(rewrite.HazardDuplicateBlockBinding)
			}
		} else {
			id := b.newBinding(name, target, DeclFunction, site, false)
			b.g.scopes[target].Names[name] = id
		}
	}

	b.functionLiteral(fn, cur, true)
}

// functionLiteral creates the function scope with its parameters and walks
// the body. A function expression's own name is visible inside its body
// only; for declarations the name was already hoisted by the caller.
func (b *builder) functionLiteral(fn *ast.FunctionLiteral, cur ID, declared bool) {
	fs := b.newScope(KindFunction, cur, fn.Idx0(), fn.Idx1())

	if fn.Name != nil && !declared {
		site := DeclSite{
			Keyword: fn.Idx0(),
			Name:    fn.Name.Idx,
			End:     fn.Idx1(),
			Home:    fs,
			HasInit: true,
		}
		id := b.newBinding(string(fn.Name.Name), fs, DeclFunction, site, false)
		b.g.scopes[fs].Names[string(fn.Name.Name)] = id
	}

	b.parameters(fn.ParameterList, fs)
	b.stmt(fn.Body, fs)
}

func (b *builder) arrowLiteral(fn *ast.ArrowFunctionLiteral, cur ID) {
	fs := b.newScope(KindFunction, cur, fn.Idx0(), fn.Idx1())
	b.parameters(fn.ParameterList, fs)

	switch body := fn.Body.(type) {
	case *ast.BlockStatement:
		b.stmt(body, fs)

	case *ast.ExpressionBody:
		b.expr(body.Expression, fs, refRead)
	}
}

func (b *builder) parameters(params *ast.ParameterList, fs ID) {
	if params == nil {
		return
	}

	for _, p := range params.List {
		b.parameter(p, fs)
	}

	if params.Rest != nil {
		for _, id := range patternIdents(params.Rest) {
			b.declareParam(string(id.Name), id.Idx, fs, true)
		}
	}
}

func (b *builder) parameter(p *ast.Binding, fs ID) {
	if id, ok := p.Target.(*ast.Identifier); ok {
		b.declareParam(string(id.Name), id.Idx, fs, false)
	} else {
		for _, id := range patternIdents(p.Target) {
			b.declareParam(string(id.Name), id.Idx, fs, true)
		}
	}

	// default values evaluate in the function scope
	b.expr(p.Initializer, fs, refRead)
}

func (b *builder) declareParam(name string, pos file.Idx, fs ID, pattern bool) {
	site := DeclSite{Keyword: pos, Name: pos, End: pos, Home: fs, HasInit: true}

	if id, ok := b.g.scopes[fs].Names[name]; ok {
		// duplicate parameters are legal in the legacy form; a var of the
		// same name merges onto its parameter
		ex := &b.g.bindings[id]
		ex.Sites = append(ex.Sites, site)
		ex.Pattern = ex.Pattern || pattern

		return
	}

	id := b.newBinding(name, fs, DeclParam, site, pattern)
	b.g.scopes[fs].Names[name] = id
}

func (b *builder) catchClause(c *ast.CatchStatement, cur ID) {
	cs := b.newScope(KindCatch, cur, c.Body.Idx0(), c.Body.Idx1())

	if c.Parameter != nil {
		site := DeclSite{
			Keyword: c.Parameter.Idx0(),
			End:     c.Parameter.Idx1(),
			Home:    cs,
			HasInit: true,
		}
		b.bindTargets(c.Parameter, cs, site, DeclCatchParam)
	}

	for _, st := range c.Body.List {
		b.stmt(st, cs)
	}
}

func (b *builder) expr(e ast.Expression, cur ID, mode refMode) {
	switch n := e.(type) {
	case nil:

	case *ast.Identifier:
		b.pending = append(b.pending, pendingRef{
			name:  string(n.Name),
			pos:   n.Idx,
			scope: cur,
			write: mode == refWrite,
		})

	case *ast.AssignExpression:
		if id, ok := n.Left.(*ast.Identifier); ok {
			b.pending = append(b.pending, pendingRef{name: string(id.Name), pos: id.Idx, scope: cur, write: true})
		} else {
			// member targets read their base
			b.expr(n.Left, cur, refRead)
		}
		b.expr(n.Right, cur, refRead)

	case *ast.UnaryExpression:
		if n.Operator == token.INCREMENT || n.Operator == token.DECREMENT {
			if id, ok := n.Operand.(*ast.Identifier); ok {
				b.pending = append(b.pending, pendingRef{name: string(id.Name), pos: id.Idx, scope: cur, write: true})

				return
			}
		}
		b.expr(n.Operand, cur, refRead)

	case *ast.BinaryExpression:
		b.expr(n.Left, cur, refRead)
		b.expr(n.Right, cur, refRead)

	case *ast.ConditionalExpression:
		b.expr(n.Test, cur, refRead)
		b.expr(n.Consequent, cur, refRead)
		b.expr(n.Alternate, cur, refRead)

	case *ast.CallExpression:
		if id, ok := n.Callee.(*ast.Identifier); ok && string(id.Name) == "eval" {
			// direct eval sees every binding on this scope chain
			b.g.evals = append(b.g.evals, cur)
		}
		b.expr(n.Callee, cur, refRead)
		for _, a := range n.ArgumentList {
			b.expr(a, cur, refRead)
		}

	case *ast.NewExpression:
		b.expr(n.Callee, cur, refRead)
		for _, a := range n.ArgumentList {
			b.expr(a, cur, refRead)
		}

	case *ast.DotExpression:
		b.expr(n.Left, cur, refRead)

	case *ast.BracketExpression:
		b.expr(n.Left, cur, refRead)
		b.expr(n.Member, cur, refRead)

	case *ast.SequenceExpression:
		for _, x := range n.Sequence {
			b.expr(x, cur, refRead)
		}

	case *ast.ArrayLiteral:
		for _, x := range n.Value {
			b.expr(x, cur, refRead)
		}

	case *ast.ObjectLiteral:
		b.objectLiteral(n, cur)

	case *ast.SpreadElement:
		b.expr(n.Expression, cur, refRead)

	case *ast.TemplateLiteral:
		b.expr(n.Tag, cur, refRead)
		for _, x := range n.Expressions {
			b.expr(x, cur, refRead)
		}

	case *ast.FunctionLiteral:
		b.functionLiteral(n, cur, false)

	case *ast.ArrowFunctionLiteral:
		b.arrowLiteral(n, cur)

	default:
		// literals, this, regexp: nothing to resolve
	}
}

func (b *builder) objectLiteral(n *ast.ObjectLiteral, cur ID) {
	for _, p := range n.Value {
		switch prop := p.(type) {
		case *ast.PropertyKeyed:
			if prop.Computed {
				b.expr(prop.Key, cur, refRead)
			}
			b.expr(prop.Value, cur, refRead)

		case *ast.PropertyShort:
			// shorthand properties read the named variable
			b.pending = append(b.pending, pendingRef{
				name:  string(prop.Name.Name),
				pos:   prop.Name.Idx,
				scope: cur,
			})
			b.expr(prop.Initializer, cur, refRead)

		case *ast.SpreadElement:
			b.expr(prop.Expression, cur, refRead)
		}
	}
}

// patternIdents collects the identifiers bound by a destructuring target.
func patternIdents(target ast.Expression) []*ast.Identifier {
	var ids []*ast.Identifier

	var walk func(e ast.Expression)
	walk = func(e ast.Expression) {
		switch n := e.(type) {
		case nil:

		case *ast.Identifier:
			ids = append(ids, n)

		case *ast.ObjectPattern:
			for _, p := range n.Properties {
				switch prop := p.(type) {
				case *ast.PropertyShort:
					ids = append(ids, &prop.Name)
				case *ast.PropertyKeyed:
					walk(prop.Value)
				}
			}
			walk(n.Rest)

		case *ast.ArrayPattern:
			for _, el := range n.Elements {
				walk(el)
			}
			walk(n.Rest)

		case *ast.AssignExpression:
			// defaults bind the left side
			walk(n.Left)
		}
	}
	walk(target)

	return ids
}
