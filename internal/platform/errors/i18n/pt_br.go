package i18n

var ptBRMessages = map[Code]string{
	CodeNotFound:           "O token {{.TokenID}} não existe",
	CodeUnauthorized:       "O chamador não tem permissão para {{.Operation}}",
	CodeInvalidArgument:    "Valor inválido para {{.Field}}",
	CodeUnauthenticated:    "Uma credencial de chamador é obrigatória",
	CodeCallerGrantInvalid: "A credencial do chamador é inválida",
	CodeCallerGrantExpired: "A credencial do chamador expirou",
	CodeJournalTampered:    "O diário de eventos falhou na verificação na sequência {{.Seq}}",
}
