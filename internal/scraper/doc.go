// Package scraper fetches raw hackathon listings from the supported sources.
//
// Each source has its own raw record type mirroring the shape the site
// publishes: Devpost and Unstop expose JSON search APIs, Devfolio embeds a
// Next.js __NEXT_DATA__ blob, MLH embeds an Inertia data-page attribute, and
// HackerEarth renders HTML cards with countdown scripts. Fetchers are tolerant
// of partial failure: they return everything collected before a page was
// abandoned together with the error that stopped them.
package scraper
