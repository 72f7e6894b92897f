package csvio_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/roster-import/modules/roster/domain/roster"
	"github.com/iota-uz/roster-import/modules/roster/infrastructure/csvio"
)

func readAll(t *testing.T, input string, delimiter rune, headerRows int) []roster.UserRecord {
	t.Helper()
	batch, err := csvio.NewReader(strings.NewReader(input), delimiter, headerRows).ReadAll()
	require.NoError(t, err)
	return batch
}

func TestReader_NormalizesRows(t *testing.T) {
	input := "lastName;firstName;userId;email;organisation;role\n" +
		"Doe;Jane;1;jane@example.org;ACME;Admin\n"

	batch := readAll(t, input, ';', 1)
	require.Len(t, batch, 1)
	assert.Equal(t, roster.UserRecord{
		LastName:     "Doe",
		FirstName:    "Jane",
		UserID:       "1",
		Email:        "jane@example.org",
		Organisation: "ACME",
		Role:         "admin",
	}, batch[0])
}

func TestReader_CarriesForwardLastName(t *testing.T) {
	input := "h1;h2;h3;h4;h5;h6\n" +
		"Doe;Jane;1;a@x;Org;Admin\n" +
		";John;2;b@x;Org;Admin\n" +
		"Smith;Ann;3;c@x;Org;Editor\n" +
		";Bob;4;d@x;Org;Editor\n"

	batch := readAll(t, input, ';', 1)
	require.Len(t, batch, 4)
	assert.Equal(t, "Doe", batch[1].LastName)
	assert.Equal(t, "Smith", batch[3].LastName)
}

func TestReader_LowercasesRoleOnly(t *testing.T) {
	input := "h\n" +
		"DOE;JANE;ID-1;JANE@X.ORG;ACME;ADMIN\n"

	batch := readAll(t, input, ';', 1)
	require.Len(t, batch, 1)
	assert.Equal(t, "admin", batch[0].Role)
	assert.Equal(t, "DOE", batch[0].LastName)
	assert.Equal(t, "JANE@X.ORG", batch[0].Email)
}

func TestReader_ShortRowsPadWithEmptyFields(t *testing.T) {
	input := "h\n" +
		"Doe;Jane;1\n"

	batch := readAll(t, input, ';', 1)
	require.Len(t, batch, 1)
	assert.Equal(t, "1", batch[0].UserID)
	assert.Equal(t, "", batch[0].Email)
	assert.Equal(t, "", batch[0].Role)
}

func TestReader_OptionalTargetGroupCodeColumn(t *testing.T) {
	input := "h\n" +
		"Doe;Jane;1;a@x;Org;Admin;TG-7\n"

	batch := readAll(t, input, ';', 1)
	require.Len(t, batch, 1)
	assert.Equal(t, "TG-7", batch[0].TargetGroupCode)
}

func TestReader_CommaDelimiter(t *testing.T) {
	input := "h\n" +
		"Doe,Jane,1,a@x,Org,Admin\n"

	batch := readAll(t, input, ',', 1)
	require.Len(t, batch, 1)
	assert.Equal(t, "Doe", batch[0].LastName)
	assert.Equal(t, "admin", batch[0].Role)
}

func TestReader_HeaderRowsConfigurable(t *testing.T) {
	input := "title line\n" +
		"h1;h2\n" +
		"Doe;Jane;1;a@x;Org;Admin\n"

	batch := readAll(t, input, ';', 2)
	require.Len(t, batch, 1)
	assert.Equal(t, "1", batch[0].UserID)

	batch = readAll(t, "Doe;Jane;1;a@x;Org;Admin\n", ';', 0)
	require.Len(t, batch, 1)
}

func TestReader_StripsUTF8BOM(t *testing.T) {
	input := "\xEF\xBB\xBFDoe;Jane;1;a@x;Org;Admin\n"

	batch := readAll(t, input, ';', 0)
	require.Len(t, batch, 1)
	assert.Equal(t, "Doe", batch[0].LastName)
}

func TestReader_MalformedInputDiscardsBatch(t *testing.T) {
	input := "h\n" +
		"Doe;Jane;1;a@x;Org;Admin\n" +
		"\"unterminated;quote\n"

	batch, err := csvio.NewReader(strings.NewReader(input), ';', 1).ReadAll()
	require.Error(t, err)
	assert.Nil(t, batch)

	var parseErr *roster.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 3, parseErr.Line)
}

func TestReader_PreservesInputOrder(t *testing.T) {
	input := "h\n" +
		"A;u1;1;;;r\n" +
		"B;u2;2;;;r\n" +
		"C;u3;3;;;r\n"

	batch := readAll(t, input, ';', 1)
	require.Len(t, batch, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{batch[0].UserID, batch[1].UserID, batch[2].UserID})
}
