package app_test

import (
	"testing"

	"trivia-arena-service/internal/app"
)

func TestDirectoryBindings(t *testing.T) {
	dir := app.NewConnectionDirectory()

	dir.BindAdmin("admin-1", "Quizmaster", "AB3XQ")
	dir.BindTeam("team-1", "AB3XQ", 100001, "Falcons")

	conn, ok := dir.Get("admin-1")
	if !ok || conn.Role != app.RoleAdmin || conn.ArenaCode != "AB3XQ" || conn.AdminName != "Quizmaster" {
		t.Fatalf("unexpected admin entry %+v (ok=%v)", conn, ok)
	}
	conn, ok = dir.Get("team-1")
	if !ok || conn.Role != app.RoleTeam || conn.TeamID != 100001 || conn.TeamName != "Falcons" {
		t.Fatalf("unexpected team entry %+v (ok=%v)", conn, ok)
	}

	dir.Remove("team-1")
	if _, ok := dir.Get("team-1"); ok {
		t.Fatalf("expected team entry removed")
	}
}

func TestEvictArenaKeepsAdminEntry(t *testing.T) {
	dir := app.NewConnectionDirectory()
	dir.BindAdmin("admin-1", "Quizmaster", "AB3XQ")
	dir.BindTeam("team-1", "AB3XQ", 100001, "Falcons")
	dir.BindTeam("team-2", "WW3XQ", 100002, "Hawks")

	dir.EvictArena("AB3XQ")

	if _, ok := dir.Get("team-1"); ok {
		t.Fatalf("expected evicted team removed")
	}
	conn, ok := dir.Get("admin-1")
	if !ok || conn.ArenaCode != "" || conn.Role != app.RoleAdmin {
		t.Fatalf("admin must survive eviction with cleared arena, got %+v (ok=%v)", conn, ok)
	}
	if conn, ok := dir.Get("team-2"); !ok || conn.ArenaCode != "WW3XQ" {
		t.Fatalf("other arenas must be untouched, got %+v (ok=%v)", conn, ok)
	}
}
