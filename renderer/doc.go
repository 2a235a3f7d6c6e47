// Package renderer draws the yard, coop, seeds, agents and feathers with raylib.
// Every drawer reads the game's render views and maps world to screen
// through a camera, so the simulation never touches raylib.
package renderer
