package cmdcore

import (
	"golang.org/x/sync/errgroup"
)

// SuggestionFactory runs the same walk as CommandTree.Resolve but in
// suggestion mode (§4.9): it never raises, returning an empty list at the
// first permission denial or impossible transition, and it gathers
// suggestions from every admissible child concurrently via errgroup rather
// than a single deterministic path, since more than one child may be worth
// offering completions for at once (a literal and a typed child sharing a
// prefix, or several typed alternatives).
type SuggestionFactory[C any] struct {
	tree *CommandTree[C]
}

// NewSuggestionFactory returns a SuggestionFactory walking tree.
func NewSuggestionFactory[C any](tree *CommandTree[C]) *SuggestionFactory[C] {
	return &SuggestionFactory[C]{tree: tree}
}

// Suggest walks the tree against in (from a Context already carrying the
// sender) and returns deduplicated, filtered completions for the token
// under the cursor (§4.9).
func (f *SuggestionFactory[C]) Suggest(ctx *Context[C], in *CommandInput) []Suggestion {
	return f.walk(ctx, f.tree.root, in)
}

func (f *SuggestionFactory[C]) walk(ctx *Context[C], node *treeNode[C], in *CommandInput) []Suggestion {
	in.SkipAllWhitespace()

	if in.IsEmpty(true) || !hasMoreThanToken(in) {
		return f.suggestAt(ctx, node, in)
	}

	mark := in.Mark()
	if child, ok := f.advanceLiteral(ctx, node, in); ok {
		return f.walk(ctx, child, in)
	}
	in.Rewind(mark)

	if child, ok := f.advanceTyped(ctx, node, in); ok {
		return f.walk(ctx, child, in)
	}
	in.Rewind(mark)

	return f.suggestAt(ctx, node, in)
}

// hasMoreThanToken reports whether, beyond the token currently under the
// cursor, there is a further whitespace-separated token still to come —
// i.e. whether the walk should keep descending rather than offer
// completions for the current position.
func hasMoreThanToken(in *CommandInput) bool {
	rest := in.String()[in.Cursor:]
	sawWhitespace := false
	for i := 0; i < len(rest); i++ {
		if isWhitespace(rest[i]) {
			sawWhitespace = true
			continue
		}
		if sawWhitespace {
			return true
		}
	}
	return false
}

func (f *SuggestionFactory[C]) advanceLiteral(ctx *Context[C], node *treeNode[C], in *CommandInput) (*treeNode[C], bool) {
	tok := in.PeekString()
	child, ok := node.literalByToken[lowerASCII(tok)]
	if !ok {
		return nil, false
	}
	if child.permission != nil && !child.permission(ctx.Sender) {
		return nil, false
	}
	if _, err := child.component.parseErased(ctx, in); err != nil {
		return nil, false
	}
	return child, true
}

func (f *SuggestionFactory[C]) advanceTyped(ctx *Context[C], node *treeNode[C], in *CommandInput) (*treeNode[C], bool) {
	for _, child := range node.typedChildren {
		if child.permission != nil && !child.permission(ctx.Sender) {
			continue
		}
		mark := in.Mark()
		if _, err := child.component.parseErased(ctx, in); err != nil {
			in.Rewind(mark)
			continue
		}
		return child, true
	}
	return nil, false
}

// suggestAt gathers suggestions from every admissible child of node
// concurrently, merges them, dedupes, and filters by the token under the
// cursor.
func (f *SuggestionFactory[C]) suggestAt(ctx *Context[C], node *treeNode[C], in *CommandInput) []Suggestion {
	children := f.tree.orderedChildren(node)
	results := make([][]Suggestion, len(children))

	var g errgroup.Group
	for i, child := range children {
		i, child := i, child
		if child.permission != nil && !child.permission(ctx.Sender) {
			continue
		}
		g.Go(func() error {
			clone := in.Clone()
			results[i] = child.component.suggestErased(ctx, clone)
			return nil
		})
	}
	_ = g.Wait()

	var merged []Suggestion
	for _, r := range results {
		merged = append(merged, r...)
	}

	token := tokenUnderCursor(in.String()[in.Cursor:])
	return FilterSuggestions(DedupSuggestions(merged), token)
}
