// Package usersettings persists per-user settings for a chat bot.
//
// A Store maps a user id to a single settings document held in a document Collection
// (MongoDB, PostgreSQL JSONB, SQLite JSON or in-memory, see the storage package). It exposes
// typed accessors for every setting, the ban lifecycle, aggregate settings helpers and
// enumeration. Absent records and absent fields always read as their documented defaults.
package usersettings
