package hcs721

import (
	"encoding/json"
	"testing"
)

func TestNormalizeSymbol(t *testing.T) {
	if NormalizeSymbol("  itm  ") != "ITM" {
		t.Fatal("expected uppercase/trimmed symbol")
	}
}

func TestNormalizeAccountID(t *testing.T) {
	valid := []struct {
		input string
		want  string
	}{
		{"0.0.12345", "0.0.12345"},
		{"  0.0.12345  ", "0.0.12345"},
		{"0.0.12345-abcde", "0.0.12345"},
		{"10.20.30", "10.20.30"},
	}
	for _, testCase := range valid {
		normalized, err := NormalizeAccountID(testCase.input)
		if err != nil {
			t.Fatalf("NormalizeAccountID(%q): %v", testCase.input, err)
		}
		if normalized != testCase.want {
			t.Fatalf("NormalizeAccountID(%q) = %q, want %q", testCase.input, normalized, testCase.want)
		}
	}

	invalid := []string{
		"",
		"not-a-hedera-account",
		"0.0",
		"0.0.01",
		"0.0.12345-ABCDE",
		"0.0.12345-abc",
		"0.0.12345-",
		"0.0.12345-abcde-fghij",
	}
	for _, input := range invalid {
		if _, err := NormalizeAccountID(input); err == nil {
			t.Fatalf("NormalizeAccountID(%q): expected error", input)
		}
	}
}

func TestNormalizeHolderID(t *testing.T) {
	hederaHolder, err := NormalizeHolderID("0.0.12345-abcde")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hederaHolder != "0.0.12345" {
		t.Fatalf("expected 0.0.12345, got %s", hederaHolder)
	}

	evmHolder, err := NormalizeHolderID("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evmHolder != "0xab5801a7d398351b8be11c439e05c5b3259aec9b" {
		t.Fatalf("expected lowercased EVM address, got %s", evmHolder)
	}

	if _, err := NormalizeHolderID("0xnot-hex"); err == nil {
		t.Fatal("expected malformed holder to be rejected")
	}
}

func TestFormatAndParseSerial(t *testing.T) {
	if FormatSerial(42) != "42" {
		t.Fatalf("unexpected formatted serial: %s", FormatSerial(42))
	}

	serial, err := ParseSerial("42")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if serial != 42 {
		t.Fatalf("expected serial 42, got %d", serial)
	}
}

func TestParseSerialRejectsZeroAndJunk(t *testing.T) {
	if _, err := ParseSerial("0"); err == nil {
		t.Fatal("expected serial 0 to be rejected")
	}
	if _, err := ParseSerial("-3"); err == nil {
		t.Fatal("expected negative serial to be rejected")
	}
	if _, err := ParseSerial("12345678901234567890"); err == nil {
		t.Fatal("expected oversized serial string to be rejected")
	}
	if _, err := ParseSerial("abc"); err == nil {
		t.Fatal("expected non-numeric serial to be rejected")
	}
}

func TestValidateTokenURI(t *testing.T) {
	if err := ValidateTokenURI("https://game.example/item-id-8u5h2m.json"); err != nil {
		t.Fatalf("unexpected token URI error: %v", err)
	}
	if err := ValidateTokenURI("   "); err == nil {
		t.Fatal("expected empty token URI to be rejected")
	}
}

func TestValidateDeployMessage(t *testing.T) {
	message := Message{
		Protocol:  "hcs-721",
		Operation: "deploy",
		Name:      "Game Items",
		Symbol:    "itm",
	}
	if err := ValidateMessage(message); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateDeployRequiresSymbol(t *testing.T) {
	message := Message{
		Protocol:  "hcs-721",
		Operation: "deploy",
		Name:      "Game Items",
	}
	if err := ValidateMessage(message); err == nil {
		t.Fatal("expected validation failure when symbol missing")
	}
}

func TestValidateDeployRejectsSymbolPunctuation(t *testing.T) {
	message := Message{
		Protocol:  "hcs-721",
		Operation: "deploy",
		Name:      "Game Items",
		Symbol:    "IT-M",
	}
	if err := ValidateMessage(message); err == nil {
		t.Fatal("expected validation failure for punctuated symbol")
	}
}

func TestValidateDeployCarriesMaxSupplyAndBaseURI(t *testing.T) {
	message := Message{
		Protocol:  "hcs-721",
		Operation: "deploy",
		Name:      "Game Items",
		Symbol:    "itm",
		MaxSupply: "250",
		BaseURI:   "https://game.example/items/",
	}
	if err := ValidateMessage(message); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateDeployRejectsMalformedMaxSupply(t *testing.T) {
	for _, maxSupply := range []string{"abc", "-5", "1.5", "12345678901234567890"} {
		message := Message{
			Protocol:  "hcs-721",
			Operation: "deploy",
			Name:      "Game Items",
			Symbol:    "itm",
			MaxSupply: maxSupply,
		}
		if err := ValidateMessage(message); err == nil {
			t.Fatalf("expected max %q to be rejected", maxSupply)
		}
	}
}

func TestParseMaxSupplyZeroMeansUnlimited(t *testing.T) {
	for _, value := range []string{"", "0"} {
		maxSupply, err := ParseMaxSupply(value)
		if err != nil {
			t.Fatalf("unexpected parse error for %q: %v", value, err)
		}
		if maxSupply != 0 {
			t.Fatalf("expected %q to parse as unlimited, got %d", value, maxSupply)
		}
	}
}

func TestValidateMintMessage(t *testing.T) {
	message := Message{
		Protocol:  "HCS-721",
		Operation: "MINT",
		To:        "0.0.2002",
		TokenURI:  "https://game.example/item-id-8u5h2m.json",
	}
	normalized, err := NormalizeMessage(message)
	if err != nil {
		t.Fatalf("unexpected normalize error: %v", err)
	}
	if err := ValidateMessage(normalized); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateMintRejectsSerial(t *testing.T) {
	message := Message{
		Protocol:  "hcs-721",
		Operation: "mint",
		Serial:    "7",
		To:        "0.0.2002",
		TokenURI:  "https://game.example/item-id-8u5h2m.json",
	}
	if err := ValidateMessage(message); err == nil {
		t.Fatal("expected validation failure when mint carries a serial")
	}
}

func TestValidateMintAllowsEmptyURI(t *testing.T) {
	message := Message{
		Protocol:  "hcs-721",
		Operation: "mint",
		To:        "0.0.2002",
	}
	if err := ValidateMessage(message); err != nil {
		t.Fatalf("expected empty mint uri to validate, got %v", err)
	}
}

func TestNormalizeMessageLowersEVMRecipient(t *testing.T) {
	normalized, err := NormalizeMessage(Message{
		Protocol:  "hcs-721",
		Operation: "mint",
		To:        "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
		TokenURI:  "https://game.example/item-id-8u5h2m.json",
	})
	if err != nil {
		t.Fatalf("unexpected normalize error: %v", err)
	}
	if normalized.To != "0xab5801a7d398351b8be11c439e05c5b3259aec9b" {
		t.Fatalf("expected lowercased EVM recipient, got %s", normalized.To)
	}
	if err := ValidateMessage(normalized); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateTransferMessage(t *testing.T) {
	message := Message{
		Protocol:  "hcs-721",
		Operation: "transfer",
		Serial:    "1",
		From:      "0.0.1001",
		To:        "0.0.1002",
	}
	if err := ValidateMessage(message); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateApproveAllowsEmptyTo(t *testing.T) {
	message := Message{
		Protocol:  "hcs-721",
		Operation: "approve",
		Serial:    "1",
	}
	if err := ValidateMessage(message); err != nil {
		t.Fatalf("expected empty approve target to revoke, got error: %v", err)
	}
}

func TestValidateApproveAllRequiresDistinctOperator(t *testing.T) {
	approved := true
	message := Message{
		Protocol:  "hcs-721",
		Operation: "approve_all",
		From:      "0.0.1001",
		Operator:  "0.0.1001",
		Approved:  &approved,
	}
	if err := ValidateMessage(message); err == nil {
		t.Fatal("expected validation failure when operator equals from")
	}
}

func TestValidateApproveAllRequiresApprovedFlag(t *testing.T) {
	message := Message{
		Protocol:  "hcs-721",
		Operation: "approve_all",
		From:      "0.0.1001",
		Operator:  "0.0.1002",
	}
	if err := ValidateMessage(message); err == nil {
		t.Fatal("expected validation failure when approved flag missing")
	}
}

func TestValidateBurnMessage(t *testing.T) {
	message := Message{
		Protocol:  "hcs-721",
		Operation: "burn",
		Serial:    "3",
		From:      "0.0.1001",
	}
	if err := ValidateMessage(message); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateUpdateURIMessage(t *testing.T) {
	message := Message{
		Protocol:  "hcs-721",
		Operation: "update_uri",
		Serial:    "3",
		TokenURI:  "https://game.example/item-id-8u5h2m-v2.json",
	}
	if err := ValidateMessage(message); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateRegisterRequiresPrivate(t *testing.T) {
	message := Message{
		Protocol:  "hcs-721",
		Operation: "register",
		Name:      "Game Items",
		Metadata:  "hcs://1/0.0.4567",
		TopicID:   "0.0.4567",
	}
	if err := ValidateMessage(message); err == nil {
		t.Fatal("expected validation failure when private field missing")
	}
}

func TestValidateRejectsForeignProtocol(t *testing.T) {
	message := Message{
		Protocol:  "hcs-20",
		Operation: "mint",
		To:        "0.0.1001",
		TokenURI:  "https://game.example/item-id-8u5h2m.json",
	}
	if err := ValidateMessage(message); err == nil {
		t.Fatal("expected validation failure for foreign protocol")
	}
}

func TestBuildMessagePayload(t *testing.T) {
	payload, normalized, err := BuildMessagePayload(Message{
		Protocol:  "HCS-721",
		Operation: "Deploy",
		Name:      "Game Items",
		Symbol:    "itm",
	})
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	if normalized.Operation != OperationDeploy {
		t.Fatalf("expected normalized operation deploy, got %s", normalized.Operation)
	}
	if normalized.Symbol != "ITM" {
		t.Fatalf("expected normalized symbol ITM, got %s", normalized.Symbol)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("expected valid JSON payload: %v", err)
	}
	if decoded["p"] != "hcs-721" {
		t.Fatalf("expected p key hcs-721, got %v", decoded["p"])
	}
	if _, exists := decoded["sn"]; exists {
		t.Fatal("deploy payload must not carry sn")
	}
}

func TestParseMessageBytes(t *testing.T) {
	message, err := ParseMessageBytes([]byte(`{"p":"hcs-721","op":"transfer","sn":"1","from":"0.0.1001","to":"0.0.1002"}`))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if message.Operation != OperationTransfer {
		t.Fatalf("unexpected operation: %s", message.Operation)
	}
	if message.From != "0.0.1001" || message.To != "0.0.1002" {
		t.Fatalf("unexpected accounts: %s -> %s", message.From, message.To)
	}
}

func TestParseMessageBytesRejectsUnknownOperation(t *testing.T) {
	_, err := ParseMessageBytes([]byte(`{"p":"hcs-721","op":"teleport","sn":"1"}`))
	if err == nil {
		t.Fatal("expected unknown operation to be rejected")
	}
}
