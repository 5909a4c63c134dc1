package normalize

func englishStopwords() map[string]struct{} {
	return wordSet(
		"a", "an", "the", "and", "or", "but", "if", "then", "else",
		"for", "to", "of", "in", "on", "at", "by", "with", "as", "is",
		"are", "was", "were", "be", "been", "being", "it", "this",
		"that", "these", "those", "from", "up", "down", "over", "under",
		"again", "than", "so", "such", "into", "about", "between",
		"through", "during", "before", "after", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "some", "i",
		"bought", "paid", "got",
	)
}

func polishStopwords() map[string]struct{} {
	return wordSet(
		"i", "w", "we", "na", "z", "ze", "do", "od", "za", "po", "o",
		"u", "przy", "przez", "dla", "nie", "to", "ta", "ten", "te",
		"tę", "się", "jest", "są", "był", "była", "było", "być", "oraz",
		"ale", "czy", "jak", "co", "aby", "żeby", "bo", "lub", "albo",
		"też", "także", "już", "tylko", "bardzo", "kupiłem", "kupiłam",
		"zapłaciłem", "zapłaciłam",
	)
}

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
