package content

// Referenced collects the set of image ids whose token appears in text.
func Referenced(text string) map[int64]struct{} {
	ids := map[int64]struct{}{}
	for _, m := range scanTokens(text) {
		ids[m.id] = struct{}{}
	}
	return ids
}

// Prune filters images down to the entries actually referenced by text, so
// metadata for deleted inline images is never persisted. Pure filter; input
// order is preserved.
func Prune(text string, images []ImageRef) []ImageRef {
	ids := Referenced(text)
	out := make([]ImageRef, 0, len(images))
	for _, img := range images {
		if _, ok := ids[img.ID]; ok {
			out = append(out, img)
		}
	}
	return out
}
