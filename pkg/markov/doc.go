/*
Package markov implements the reply generator behind Parrot: an in-memory
order-2 Markov chain over normalized words, combined with a grammatical bias
that occasionally prefers adjective->noun and noun->verb transitions learned
from part-of-speech tags.

A Model is trained from a whole corpus at once, one utterance per line, and is
rebuilt from scratch on every Train call. Word classes come from a Tagger
supplied by the caller; package pos provides a rule-based English one.

	model := markov.NewModel(pos.NewTagger())
	model.Train("the cat sat.\nthe cat ran.")
	reply := model.GenerateResponse("look at the cat")
*/
package markov
