package service

import (
	"context"
	"errors"
	"fitbuddy/app/internal/domain"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAvatarUploadFlow(t *testing.T) {
	users := newMemUserRepo()
	store := newFakeStorage()
	svc := NewProfileService(users, store)
	ctx := context.Background()
	uid := users.add(domain.User{Name: "E", Email: "e@example.com", AvatarKey: "avatars/old.png"})
	store.objects["avatars/old.png"] = true

	if _, err := svc.RequestAvatarUploadURL(ctx, uid, "application/pdf"); !errors.Is(err, ErrInvalidAvatarType) {
		t.Fatalf("pdf err = %v", err)
	}

	up, err := svc.RequestAvatarUploadURL(ctx, uid, "image/png")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(up.ObjectKey, "avatars/"+uid.Hex()+"/") || !strings.HasSuffix(up.ObjectKey, ".png") {
		t.Fatalf("object key = %q", up.ObjectKey)
	}

	if _, err := svc.ConfirmAvatar(ctx, uid, up.ObjectKey); !errors.Is(err, ErrAvatarNotUploaded) {
		t.Fatalf("confirm before upload err = %v", err)
	}

	store.objects[up.ObjectKey] = true
	profile, err := svc.ConfirmAvatar(ctx, uid, up.ObjectKey)
	if err != nil {
		t.Fatal(err)
	}
	if profile.User.AvatarKey != up.ObjectKey || !strings.Contains(profile.AvatarURL, up.ObjectKey) {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "avatars/old.png" {
		t.Fatalf("deleted = %v", store.deleted)
	}
}

func TestConfirmAvatarRejectsForeignKey(t *testing.T) {
	users := newMemUserRepo()
	svc := NewProfileService(users, newFakeStorage())
	uid := users.add(domain.User{Email: "f@example.com"})
	other := primitive.NewObjectID()

	_, err := svc.ConfirmAvatar(context.Background(), uid, "avatars/"+other.Hex()+"/x.png")
	if !errors.Is(err, ErrAvatarKeyForeign) {
		t.Fatalf("err = %v", err)
	}
}

func TestGetProfileWithoutAvatarURL(t *testing.T) {
	users := newMemUserRepo()
	store := newFakeStorage()
	store.failURL = true
	svc := NewProfileService(users, store)
	uid := users.add(domain.User{Email: "g@example.com", PasswordHash: "x", AvatarKey: "avatars/a.png"})

	p, err := svc.GetProfile(context.Background(), uid)
	if err != nil {
		t.Fatal(err)
	}
	if p.AvatarURL != "" || p.User.PasswordHash != "" {
		t.Fatalf("unexpected profile %+v", p)
	}

	if _, err := svc.GetProfile(context.Background(), primitive.NewObjectID()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing user err = %v", err)
	}
}

func TestUpdateName(t *testing.T) {
	users := newMemUserRepo()
	svc := NewProfileService(users, newFakeStorage())
	uid := users.add(domain.User{Email: "h@example.com"})

	if err := svc.UpdateName(context.Background(), uid, "  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank err = %v", err)
	}
	if err := svc.UpdateName(context.Background(), uid, " Grace "); err != nil {
		t.Fatal(err)
	}
	u, _ := users.GetByID(context.Background(), uid)
	if u.Name != "Grace" {
		t.Fatalf("name = %q", u.Name)
	}
}
