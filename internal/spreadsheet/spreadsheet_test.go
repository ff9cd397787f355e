package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	input := "universityName,passkey\nState University, abc123 \nTech Institute,def456\n"

	sheet, err := Parse("universities.csv", strings.NewReader(input), []string{"universityName", "passkey"})
	require.NoError(t, err)
	require.Len(t, sheet.Records, 2)
	require.Equal(t, "State University", sheet.Records[0]["universityName"])
	require.Equal(t, "abc123", sheet.Records[0]["passkey"])
	require.Equal(t, "Tech Institute", sheet.Records[1]["universityName"])
}

func TestParseCSVSkipsBlankRows(t *testing.T) {
	input := "universityName,passkey\nState University,abc123\n,\n"

	sheet, err := Parse("u.csv", strings.NewReader(input), []string{"universityName", "passkey"})
	require.NoError(t, err)
	require.Len(t, sheet.Records, 1)
}

func TestParseCSVHeaderCaseInsensitive(t *testing.T) {
	input := "UNIVERSITYNAME,Passkey\nState University,abc123\n"

	sheet, err := Parse("u.csv", strings.NewReader(input), []string{"universityName", "passkey"})
	require.NoError(t, err)
	require.Equal(t, "State University", sheet.Records[0]["universityName"])
	require.Equal(t, "abc123", sheet.Records[0]["passkey"])
}

func TestParseMissingColumns(t *testing.T) {
	input := "universityName\nState University\n"

	_, err := Parse("u.csv", strings.NewReader(input), []string{"universityName", "passkey"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "passkey")
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse("u.pdf", strings.NewReader("x"), nil)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseEmptyFile(t *testing.T) {
	_, err := Parse("u.csv", strings.NewReader(""), []string{"passkey"})
	require.Error(t, err)
}

func TestParseXLSX(t *testing.T) {
	file := excelize.NewFile()
	defer file.Close()

	sheetName := file.GetSheetName(0)
	require.NoError(t, file.SetSheetRow(sheetName, "A1", &[]string{"passkey", "mailId", "name"}))
	require.NoError(t, file.SetSheetRow(sheetName, "A2", &[]string{"pk-1", "hr@acme.com", "Acme Corp"}))
	require.NoError(t, file.SetSheetRow(sheetName, "A3", &[]string{"pk-2", "jobs@globex.com", "Globex"}))

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))

	sheet, err := Parse("invites.xlsx", &buf, []string{"passkey", "mailId", "name"})
	require.NoError(t, err)
	require.Len(t, sheet.Records, 2)
	require.Equal(t, "pk-1", sheet.Records[0]["passkey"])
	require.Equal(t, "hr@acme.com", sheet.Records[0]["mailId"])
	require.Equal(t, "Globex", sheet.Records[1]["name"])
}

func TestParseShortRowsPadWithEmpty(t *testing.T) {
	input := "passkey,mailId,name\npk-1,hr@acme.com\n"

	sheet, err := Parse("i.csv", strings.NewReader(input), []string{"passkey", "mailId", "name"})
	require.NoError(t, err)
	require.Len(t, sheet.Records, 1)
	require.Equal(t, "", sheet.Records[0]["name"])
}
