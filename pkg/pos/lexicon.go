package pos

// defaultLexicon returns a fresh copy of the built-in word list. Words that
// are missing fall back to suffix heuristics, so the list favours short,
// frequent and irregular words that the heuristics get wrong.
func defaultLexicon() map[string]Tag {
	lex := make(map[string]Tag, 600)
	add := func(tag Tag, words ...string) {
		for _, w := range words {
			lex[w] = tag
		}
	}

	add(Determiner, "the", "a", "an", "this", "that", "these", "those", "my", "your",
		"his", "her", "its", "our", "their", "some", "any", "no", "every", "each", "all",
		"both", "few", "many", "much", "most", "another", "either", "neither", "what",
		"which", "whose")

	add(Pronoun, "i", "you", "he", "she", "it", "we", "they", "me", "him", "us", "them",
		"myself", "yourself", "himself", "herself", "itself", "ourselves", "themselves",
		"mine", "yours", "hers", "ours", "theirs", "who", "whom", "someone", "something",
		"anyone", "anything", "everyone", "everything", "nobody", "nothing", "im", "youre",
		"thats", "theyre", "ill", "ive", "dont", "cant", "wont", "didnt")

	add(Preposition, "in", "on", "at", "to", "for", "with", "by", "from", "of", "about",
		"into", "through", "during", "before", "after", "above", "below", "between",
		"under", "over", "against", "among", "around", "behind", "beside", "beyond",
		"near", "toward", "towards", "upon", "within", "without", "across", "along",
		"inside", "outside", "off", "up", "down", "out")

	add(Auxiliary, "is", "are", "was", "were", "be", "been", "being", "am", "have",
		"has", "had", "having", "do", "does", "did", "doing")

	add(Modal, "can", "could", "will", "would", "shall", "should", "may", "might", "must")

	add(Conjunction, "and", "or", "but", "nor", "yet", "so", "because", "although",
		"while", "if", "unless", "until", "since", "when", "where", "whether", "than")

	add(Interjection, "hi", "hello", "hey", "bye", "goodbye", "yes", "yeah",
		"nope", "ok", "okay", "oh", "wow", "thanks", "please", "sorry", "lol", "haha",
		"hmm", "uh", "um", "yay", "ouch", "oops")

	add(Adverb, "very", "quite", "rather", "really", "too", "just", "only", "now",
		"then", "here", "there", "always", "never", "often", "sometimes", "soon",
		"again", "already", "still", "even", "also", "not", "maybe", "today",
		"tomorrow", "yesterday", "tonight", "away", "back", "how", "why", "well")

	add(Adjective, "old", "new", "good", "bad", "great", "small", "large", "big",
		"little", "young", "long", "short", "high", "low", "early", "late", "first",
		"last", "dark", "bright", "happy", "sad", "angry", "funny", "silly", "cute",
		"nice", "mean", "kind", "cool", "hot", "cold", "warm", "wet", "dry", "fast",
		"slow", "quick", "loud", "quiet", "soft", "hard", "easy", "pretty", "ugly",
		"clean", "dirty", "full", "empty", "hungry", "sleepy", "tired", "fluffy",
		"fuzzy", "tiny", "huge", "red", "blue", "green", "yellow", "orange", "purple",
		"pink", "black", "white", "brown", "grey", "gray", "golden", "best", "worst",
		"better", "worse", "favorite", "favourite", "real", "true", "wrong", "right",
		"sweet", "strange", "weird", "lonely", "smart", "brave", "wild", "shiny",
		"lazy", "busy", "ready", "sure", "fine", "awesome", "amazing", "other")

	add(Verb, "go", "goes", "went", "gone", "come", "comes", "came", "say", "says",
		"said", "see", "sees", "saw", "seen", "know", "knows", "knew", "known", "take",
		"takes", "took", "taken", "get", "gets", "got", "make", "makes", "made", "think",
		"thinks", "thought", "want", "wants", "like", "likes", "love", "loves", "hate",
		"hates", "eat", "eats", "ate", "eaten", "drink", "drinks", "drank", "sleep",
		"sleeps", "slept", "run", "runs", "ran", "walk", "walks", "sit", "sits", "sat",
		"stand", "stands", "stood", "jump", "jumps", "play", "plays", "sing", "sings",
		"sang", "dance", "dances", "talk", "talks", "speak", "speaks", "spoke", "tell",
		"tells", "told", "ask", "asks", "give", "gives", "gave", "find", "finds", "found",
		"feel", "feels", "felt", "look", "looks", "need", "needs", "live", "lives",
		"fly", "flies", "flew", "swim", "swims", "swam", "bark", "barks", "meow",
		"meows", "purr", "purrs", "chase", "chases", "bite", "bites", "bit", "fall",
		"falls", "fell", "laugh", "laughs", "cry", "cries", "smile", "smiles", "hear",
		"hears", "heard", "help", "helps", "try", "tries", "let", "lets", "put", "puts",
		"keep", "keeps", "kept", "leave", "leaves", "left", "call", "calls", "work",
		"works", "learn", "learns", "learnt", "understand", "understands", "understood",
		"remember", "remembers", "forget", "forgets", "forgot", "hide", "hides", "hid",
		"wait", "waits", "stop", "stops", "start", "starts", "rain", "rains", "grow",
		"grows", "grew", "read", "reads", "write", "writes", "wrote", "build", "builds",
		"built", "buy", "buys", "bought", "become", "becomes", "became", "begin",
		"begins", "began", "bring", "brings", "brought", "win", "wins", "won", "lose",
		"loses", "lost", "meet", "meets", "met", "pay", "pays", "paid", "send", "sends",
		"sent", "sell", "sells", "sold", "show", "shows", "showed", "turn", "turns")

	// Frequent nouns the suffix rules would misread.
	add(Noun, "animal", "noise", "thing", "morning", "evening", "ceiling",
		"king", "ring", "wing", "spring", "string", "bed", "seed",
		"weed", "bird", "music", "magic", "topic", "picnic", "friend", "family",
		"name", "time", "day", "night", "world", "home", "house", "food", "water",
		"cat", "dog", "fish", "ball", "game", "book", "song", "tree", "sun", "moon",
		"star", "sky", "rainbow", "cake", "cookie", "toy", "car", "bike", "school",
		"teacher", "mom", "dad", "baby", "people", "person", "man", "woman", "child",
		"kid", "boy", "girl", "parrot", "pet", "heart", "head", "hand", "face", "eye",
		"eyes", "story", "idea", "question", "answer", "word", "words")

	return lex
}
