// SPDX-License-Identifier: Apache-2.0
package registration

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAnswers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")
	content := `name: Happy Paws
email: vet@example.com
phone: "(902) 555-0100"
city: Halifax
equipment:
  standard: [standard1, standard3]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	got, err := LoadAnswers(path)
	require.NoError(t, err)
	want := Answers{
		Name:      "Happy Paws",
		Email:     "vet@example.com",
		Phone:     "(902) 555-0100",
		City:      "Halifax",
		Equipment: map[string][]string{"standard": {"standard1", "standard3"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadAnswers mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAnswersRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("password: hunter2\n"), 0o600))

	_, err := LoadAnswers(path)
	assert.Error(t, err, "passwords are not accepted from answers files")
}

func TestParseEquipment(t *testing.T) {
	got, err := ParseEquipment([]string{"standard=standard1,standard2", "clinical=clinical4", "standard=standard2"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"standard": {"standard1", "standard2"},
		"clinical": {"clinical4"},
	}, got)

	_, err = ParseEquipment([]string{"standard1"})
	assert.Error(t, err)
	_, err = ParseEquipment([]string{"=x"})
	assert.Error(t, err)
}

func TestAnswersMerge(t *testing.T) {
	base := Answers{Name: "File Name", City: "Halifax", Equipment: map[string][]string{"standard": {"standard1"}}}
	flags := Answers{Name: "Flag Name", Equipment: map[string][]string{"clinical": {"clinical1"}}}

	got := base.Merge(flags)
	assert.Equal(t, "Flag Name", got.Name)
	assert.Equal(t, "Halifax", got.City)
	assert.Len(t, got.Equipment, 2)
	assert.Len(t, base.Equipment, 1, "merge does not write to the receiver's map")
}

func TestAnswersSnapshot(t *testing.T) {
	a := Answers{
		Name:      "Happy Paws",
		Email:     "vet@example.com",
		City:      "Halifax",
		Equipment: map[string][]string{"standard": {"standard2"}},
	}

	s, err := a.Snapshot(ClinicRegistration())
	require.NoError(t, err)
	assert.Equal(t, "Happy Paws", s.Text(KeyName))
	assert.Equal(t, []string{"standard2"}, s.Items(KeyStandardEquipment))
	_, hasPhone := s.Get(KeyPhone)
	assert.False(t, hasPhone, "empty answers are left unset")

	_, err = a.Snapshot(ClientRegistration())
	assert.True(t, errors.Is(err, ErrUnknownEquipmentGroup), "clients have no equipment step")

	bad := Answers{Equipment: map[string][]string{"standard": {"clinical1"}}}
	_, err = bad.Snapshot(ClinicRegistration())
	assert.True(t, errors.Is(err, ErrUnknownEquipmentGroup))

	profile, err := Answers{Email: "other@example.com", Name: "New"}.Snapshot(ClinicProfile())
	require.NoError(t, err)
	_, hasEmail := profile.Get(KeyEmail)
	assert.False(t, hasEmail, "read-only email is never taken from answers")
}
