// Package games holds the rules of the meme grid game.
//
// Each cell of a 6x6 grid hides either Shrek or Sigma, picked by a fair coin
// flip per cell, so the two memes are not evenly split.
// The player picks one of the two memes, then reveals cells one at a time.
// Revealing the other meme ends the round.
//
// Solo:
// - A wrong reveal loses the round
// - Revealing every cell of your meme clears the board
//
// Versus (two players, one screen):
// - Player one picks a meme, player two gets the other one
// - Players alternate after each safe reveal
// - A wrong reveal hands the round to the opponent
//
// Invalid commands (unknown cells, repeats, moves after the round is over)
// are ignored rather than reported.
package games
