package ir

import "slices"

// RemoveUnreachableBlocks drops blocks that cannot be reached from the entry
// block and the phi inputs coming from them. It returns the number of blocks
// removed.
func RemoveUnreachableBlocks(f *Function) int {
	if f.IsDeclaration() {
		return 0
	}

	reachable := map[string]bool{f.Entry().Label: true}
	worklist := []string{f.Entry().Label}
	for len(worklist) > 0 {
		curr := worklist[0]
		worklist = worklist[1:]
		b := f.Block(curr)
		if b == nil {
			continue
		}
		for _, s := range b.Successors() {
			if !reachable[s] {
				reachable[s] = true
				worklist = append(worklist, s)
			}
		}
	}

	before := len(f.Blocks)
	f.Blocks = slices.DeleteFunc(f.Blocks, func(b *BasicBlock) bool { return !reachable[b.Label] })
	if removed := before - len(f.Blocks); removed > 0 {
		for _, b := range f.Blocks {
			for i, in := range b.Instrs {
				phi, ok := in.(Phi)
				if !ok {
					continue
				}
				phi.Incoming = slices.DeleteFunc(slices.Clone(phi.Incoming), func(in Incoming) bool { return !reachable[in.Block] })
				b.Instrs[i] = phi
			}
		}
		return removed
	}
	return 0
}
