package cmdcore

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// treeNode is one allocation in a CommandTree: a bound component, an
// optional owning Command (set when the node terminates a command), its
// children bucketed literal-before-typed (§4.6 tie-break), and a parent
// back-edge used only to reconstruct correctSyntax (§3 "logical relation
// only; no ownership cycle").
type treeNode[C any] struct {
	component componentParser
	command   *Command[C]
	parent    *treeNode[C]

	literalNodes   []*treeNode[C]
	literalByToken map[string]*treeNode[C]
	typedChildren  []*treeNode[C]

	permission func(C) bool

	// defaultBindings holds default values for trailing optional components
	// skipped to reach this node as a terminal, keyed by component name
	// (§3 CommandComponent.defaultValue, §4.6's optional-trailing case).
	defaultBindings map[string]any
}

func newTreeNode[C any](component componentParser, parent *treeNode[C]) *treeNode[C] {
	return &treeNode[C]{component: component, parent: parent, literalByToken: map[string]*treeNode[C]{}}
}

// CommandTree holds every registered Command[C] as one shared trie over
// CommandComponent sequences (§3 CommandTree node, §4.6). Nodes are
// allocated once at registration; a later registration only adds children,
// attaches a terminal command, or merges its permission into a shared node.
// After LockRegistration the tree is read-only (§3 Lifecycle).
type CommandTree[C any] struct {
	root   *treeNode[C]
	locked bool
}

// NewCommandTree returns an empty CommandTree.
func NewCommandTree[C any]() *CommandTree[C] {
	return &CommandTree[C]{root: newTreeNode[C](nil, nil)}
}

// LockRegistration freezes the tree: RegisterCommand after this point
// returns an error (§3 Lifecycle).
func (t *CommandTree[C]) LockRegistration() { t.locked = true }

func andPermission[C any](a, b func(C) bool) func(C) bool {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return func(sender C) bool { return a(sender) && b(sender) }
	}
}

// anyPermission merges the permission of a further command into a node it
// shares: the node admits a sender that any of its commands admits, and an
// unrestricted (nil) command leaves the node unrestricted.
func anyPermission[C any](a, b func(C) bool) func(C) bool {
	if a == nil || b == nil {
		return nil
	}
	return func(sender C) bool { return a(sender) || b(sender) }
}

func validateMonotonicity(components []componentParser) error {
	seenOptional := false
	for _, c := range components {
		if c.isFlagsBlock() {
			continue // flags admission is orthogonal to required/optional monotonicity
		}
		if !c.required() {
			seenOptional = true
			continue
		}
		if seenOptional {
			return Internal(fmt.Errorf("cmdcore: required component %q follows an optional component", c.componentName()))
		}
	}
	return nil
}

func validateGreedyPlacement(components []componentParser) error {
	for i, c := range components {
		if !c.isGreedyString() {
			continue
		}
		isLast := i == len(components)-1
		isBeforeTrailingFlags := i == len(components)-2 && components[len(components)-1].isFlagsBlock()
		if !isLast && !isBeforeTrailingFlags {
			return Internal(fmt.Errorf("cmdcore: greedy string component %q must be terminal (or immediately precede a trailing flags block)", c.componentName()))
		}
	}
	return nil
}

// RegisterCommand walks cmd's component sequence into the tree, merging
// equal literal nodes by canonical name and creating new typed-child nodes
// as needed (§4.6 Registration).
func (t *CommandTree[C]) RegisterCommand(cmd *Command[C]) error {
	if t.locked {
		return Internal(fmt.Errorf("cmdcore: cannot register %v: tree is locked", cmd))
	}
	if len(cmd.components) == 0 {
		return Internal(fmt.Errorf("cmdcore: command has no components"))
	}
	if err := validateMonotonicity(cmd.components); err != nil {
		return err
	}
	if err := validateGreedyPlacement(cmd.components); err != nil {
		return err
	}

	nodes := make([]*treeNode[C], 0, len(cmd.components)+1)
	nodes = append(nodes, t.root)
	current := t.root
	for _, comp := range cmd.components {
		node, err := t.mergeChild(current, comp, cmd)
		if err != nil {
			return err
		}
		current = node
		nodes = append(nodes, node)
	}

	firstOptional := -1
	for i, comp := range cmd.components {
		if comp.isFlagsBlock() {
			continue
		}
		if !comp.required() {
			firstOptional = i
			break
		}
	}
	if firstOptional == -1 {
		return t.attachTerminal(nodes[len(nodes)-1], cmd, nil)
	}
	for p := firstOptional; p < len(nodes); p++ {
		if err := t.attachTerminal(nodes[p], cmd, collectDefaults(cmd.components[p:])); err != nil {
			return err
		}
	}
	return nil
}

func collectDefaults(tail []componentParser) map[string]any {
	out := map[string]any{}
	for _, c := range tail {
		if c.isFlagsBlock() {
			continue
		}
		if v, has := c.defaultErased(); has {
			out[c.componentName()] = v
		}
	}
	return out
}

func (t *CommandTree[C]) attachTerminal(node *treeNode[C], cmd *Command[C], defaults map[string]any) error {
	if node.command != nil {
		return Internal(fmt.Errorf("cmdcore: ambiguous command registration: a command already terminates at this node"))
	}
	node.command = cmd
	node.defaultBindings = defaults
	return nil
}

func (t *CommandTree[C]) mergeChild(current *treeNode[C], comp componentParser, cmd *Command[C]) (*treeNode[C], error) {
	if comp.isLiteral() {
		return t.mergeLiteralChild(current, comp, cmd)
	}
	return t.mergeTypedChild(current, comp, cmd)
}

func (t *CommandTree[C]) mergeLiteralChild(current *treeNode[C], comp componentParser, cmd *Command[C]) (*treeNode[C], error) {
	tokens := comp.literalTokens()
	canonical := tokens[0]

	if existing, ok := current.literalByToken[canonical]; ok {
		existing.permission = anyPermission(existing.permission, cmd.permission)
		return existing, nil
	}
	for _, tok := range tokens {
		if _, ok := current.literalByToken[tok]; ok {
			return nil, Internal(fmt.Errorf("cmdcore: literal alias %q is already registered under a different command at this position", tok))
		}
	}

	node := newTreeNode[C](comp, current)
	node.permission = andPermission(nil, cmd.permission)
	for _, tok := range tokens {
		current.literalByToken[tok] = node
	}
	current.literalNodes = append(current.literalNodes, node)
	return node, nil
}

func (t *CommandTree[C]) mergeTypedChild(current *treeNode[C], comp componentParser, cmd *Command[C]) (*treeNode[C], error) {
	name := comp.componentName()
	for _, existing := range current.typedChildren {
		if existing.component.componentName() != name {
			continue
		}
		if existing.component.typeTag() != comp.typeTag() {
			return nil, Internal(fmt.Errorf("cmdcore: ambiguous typed child %q: incompatible argument types registered at the same position", name))
		}
		existing.permission = anyPermission(existing.permission, cmd.permission)
		return existing, nil
	}

	node := newTreeNode[C](comp, current)
	node.permission = andPermission(nil, cmd.permission)
	current.typedChildren = append(current.typedChildren, node)
	return node, nil
}

// RegisterAlias registers an additional root literal token (and any of its
// own aliases) that resolves to the same subtree as an already-registered
// root literal named target (SPEC_FULL.md §C, a supplemented feature). Both
// literals then share every descendant node and, transitively, every
// command registered under target.
func (t *CommandTree[C]) RegisterAlias(target string, alias string, moreAliases ...string) error {
	if t.locked {
		return Internal(fmt.Errorf("cmdcore: cannot register alias %q: tree is locked", alias))
	}
	node, ok := t.root.literalByToken[lowerASCII(target)]
	if !ok {
		return Internal(fmt.Errorf("cmdcore: RegisterAlias: no root literal named %q", target))
	}
	for _, tok := range append([]string{alias}, moreAliases...) {
		key := lowerASCII(tok)
		if !ValidComponentName(tok) {
			return Internal(fmt.Errorf("cmdcore: alias %q must not contain whitespace", tok))
		}
		if existing, ok := t.root.literalByToken[key]; ok && existing != node {
			return Internal(fmt.Errorf("cmdcore: alias %q is already registered under a different command", tok))
		}
		t.root.literalByToken[key] = node
	}
	return nil
}

func componentBindKey(name string) string { return "component#" + name }

func bindComponent[C any](ctx *Context[C], name string, value any) {
	ctx.store[componentBindKey(name)] = value
}

// ComponentValue type-asserts the value bound for a CommandComponent named
// name in ctx to T, after a successful CommandTree walk.
func ComponentValue[C, T any](ctx *Context[C], name string) (T, bool) {
	var zero T
	raw, ok := ctx.store[componentBindKey(name)]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// Resolve walks the tree against in, binding each matched component's value
// into ctx, and returns the matched Command — or the §4.6/§7 error the walk
// produced. It does not invoke the handler; that is the ExecutionCoordinator's
// job (§4.10), kept separate so parse and handler execution can run under
// different scheduling strategies.
func (t *CommandTree[C]) Resolve(ctx *Context[C], in *CommandInput) (*Command[C], error) {
	current := t.root
	originalInput := in.String()

	for {
		in.SkipAllWhitespace()
		if in.IsEmpty(true) {
			if current.command == nil {
				return nil, InvalidSyntax(t.correctSyntax(ctx, current), in.String()[:in.Cursor])
			}
			if current.command.senderType != "" {
				if actual := reflect.TypeOf(ctx.Sender).String(); actual != current.command.senderType {
					return nil, InvalidSender(current.command.senderType, actual)
				}
			}
			if !current.command.Permitted(ctx.Sender) {
				return nil, NoPermission("command", "command")
			}
			for name, v := range current.defaultBindings {
				bindComponent(ctx, name, v)
			}
			return current.command, nil
		}

		node, matched, err := t.matchChild(ctx, current, in)
		if err != nil {
			return nil, err
		}
		if !matched {
			if current == t.root {
				return nil, NoSuchCommand(originalInput)
			}
			return nil, InvalidSyntax(t.correctSyntax(ctx, current), in.String()[:in.Cursor])
		}
		current = node
	}
}

func (t *CommandTree[C]) matchChild(ctx *Context[C], current *treeNode[C], in *CommandInput) (*treeNode[C], bool, error) {
	tok := in.PeekString()
	if node, ok := current.literalByToken[lowerASCII(tok)]; ok {
		if node.permission != nil && !node.permission(ctx.Sender) {
			return nil, false, NoPermission(node.component.componentName(), "permission")
		}
		value, err := node.component.parseErased(ctx, in)
		if err != nil {
			return nil, false, err
		}
		bindComponent(ctx, node.component.componentName(), value)
		return node, true, nil
	}

	for _, node := range current.typedChildren {
		if node.permission != nil && !node.permission(ctx.Sender) {
			continue // a hidden alternative type; try the next typed sibling
		}
		mark := in.Mark()
		value, err := node.component.parseErased(ctx, in)
		if err != nil {
			in.Rewind(mark)
			continue
		}
		bindComponent(ctx, node.component.componentName(), value)
		return node, true, nil
	}

	return nil, false, nil
}

func displayToken(c componentParser) string {
	if c.isLiteral() {
		return c.componentName()
	}
	if c.isFlagsBlock() {
		return "[--flags]"
	}
	return "<" + c.componentName() + ">"
}

// orderedChildren returns node's children in suggestion/display tie-break
// order: literal children sorted by name, then typed children in
// registration order (§4.6 Tie-breaking).
func (t *CommandTree[C]) orderedChildren(node *treeNode[C]) []*treeNode[C] {
	lits := append([]*treeNode[C]{}, node.literalNodes...)
	sort.Slice(lits, func(i, j int) bool {
		return lits[i].component.componentName() < lits[j].component.componentName()
	})
	return append(lits, node.typedChildren...)
}

// correctSyntax reconstructs the §4.6/§7 INVALID_SYNTAX.correctSyntax
// message: the longest successful prefix (read back via parent back-edges)
// plus every continuation the sender has permission to attempt next.
func (t *CommandTree[C]) correctSyntax(ctx *Context[C], node *treeNode[C]) string {
	var prefix []string
	for n := node; n != nil && n.component != nil; n = n.parent {
		prefix = append([]string{displayToken(n.component)}, prefix...)
	}

	var continuations []string
	for _, child := range t.orderedChildren(node) {
		if child.permission != nil && !child.permission(ctx.Sender) {
			continue
		}
		continuations = append(continuations, displayToken(child.component))
	}

	syntax := strings.Join(prefix, " ")
	if len(continuations) == 0 {
		return syntax
	}
	return strings.TrimSpace(syntax + " " + strings.Join(continuations, "|"))
}
