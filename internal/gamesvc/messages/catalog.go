package messages

import "github.com/avvvet/sus-services/internal/gamesvc/models"

var catalog = map[models.Language]map[Key]string{
	models.LanguageEnglish: {
		DMImposter:        "You are the imposter! Place the word **{word}** in the conversation without getting caught.",
		DMCrew:            "You are not the imposter. Watch the conversation and find who is placing a secret word.",
		DMVoided:          "This game could not start, ignore the message above.",
		DMPlaced:          "Your word has been spotted. Well played, now stay discreet.",
		DMPlaceDuringVote: "Votes are open and you never placed your word. You can still place it, but you will not earn any points.",

		GameLaunch:       "{mention} a new game has started (#{id})! Check your direct messages.",
		VoteOpen:         "{mention} votes are open! Use the vote command to accuse the imposter.",
		GameCancelled:    "{mention} the game has been cancelled.",
		Voted:            "{mention} has voted ({voteCount}/{playerCount}).",
		VoteEnd:          "{mention} the votes are closed!",
		RevealNormal:     "The imposter was {sus} and the word was **{word}**. It was placed here: {link}",
		RevealMalus:      "The imposter was {sus} and the word was **{word}**. It was placed too late: {link}",
		RevealNotPlaced:  "The imposter was {sus} and the word was **{word}**. It was never placed!",
		PointsEarned:     "{mention}: {amount} points",
		ScoreboardTitle:  "Scoreboard",
		ScoreboardRow:    "**{rank}.** {user} with {points} points",
		GamesTitle:       "Games of {guild}",
		GamesRow:         "#{id}: {word}",
		GamesFooter:      "Page {page}/{pages}",
		GamesEmpty:       "No game has been played yet.",
		GameDetails:      "Game #{id} ({status}): the imposter was {sus} and the word was **{word}**.",
		RemainingVoters:  "Still waiting for: {voters}",
		RemainingNone:    "Everybody has voted.",
		VoteRegistered:   "Your vote has been registered.",
		VotesClosed:      "Votes closed.",
		RoleSet:          "The player role is now {role}.",
		LanguageSet:      "The language has been set to English.",
		PlacementNoticed: "Placement recorded.",

		MissingRole:      "No player role is set, or it no longer exists. Set one with the set-role command.",
		AlreadyInGame:    "A game is already running in this server.",
		NotEnoughPlayers: "At least 3 members must have the {role} role to play.",
		TooManyPlayers:   "At most 15 members can have the {role} role to play.",
		DMError:          "I could not send a direct message to {tag}, the game cannot start.",
		NotInGame:        "No game is running.",
		NotInVote:        "Votes are not open.",
		AlreadyInVote:    "Votes are already open.",
		NotHost:          "Only the host of the game can do that.",
		AlreadyVoted:     "You already voted for {voted}.",
		NoScores:         "Nobody has scored yet.",
		UnknownGame:      "This game does not exist.",
		UnknownLanguage:  "This language is not supported.",
		SystemError:      "An error occurred, please try again later.",
	},
	models.LanguageFrench: {
		DMImposter:        "Tu es le sus ! Place le mot **{word}** dans la conversation sans te faire repérer.",
		DMCrew:            "Tu n'es pas le sus. Surveille la conversation et trouve qui place un mot secret.",
		DMVoided:          "Cette partie n'a pas pu démarrer, ignore le message ci-dessus.",
		DMPlaced:          "Ton mot a bien été repéré. Bien joué, reste discret maintenant.",
		DMPlaceDuringVote: "Les votes sont ouverts et tu n'as pas placé ton mot. Tu peux encore le placer mais tu ne gagneras aucun point.",

		GameLaunch:       "{mention} une nouvelle partie commence (#{id}) ! Regardez vos messages privés.",
		VoteOpen:         "{mention} les votes sont ouverts ! Utilisez la commande de vote pour accuser le sus.",
		GameCancelled:    "{mention} la partie a été annulée.",
		Voted:            "{mention} a voté ({voteCount}/{playerCount}).",
		VoteEnd:          "{mention} les votes sont clos !",
		RevealNormal:     "Le sus était {sus} et le mot était **{word}**. Il a été placé ici : {link}",
		RevealMalus:      "Le sus était {sus} et le mot était **{word}**. Il a été placé trop tard : {link}",
		RevealNotPlaced:  "Le sus était {sus} et le mot était **{word}**. Il n'a jamais été placé !",
		PointsEarned:     "{mention} : {amount} points",
		ScoreboardTitle:  "Classement",
		ScoreboardRow:    "**{rank}.** {user} avec {points} points",
		GamesTitle:       "Parties de {guild}",
		GamesRow:         "#{id} : {word}",
		GamesFooter:      "Page {page}/{pages}",
		GamesEmpty:       "Aucune partie n'a encore été jouée.",
		GameDetails:      "Partie #{id} ({status}) : le sus était {sus} et le mot était **{word}**.",
		RemainingVoters:  "En attente de : {voters}",
		RemainingNone:    "Tout le monde a voté.",
		VoteRegistered:   "Ton vote a été enregistré.",
		VotesClosed:      "Votes clos.",
		RoleSet:          "Le rôle des joueurs est maintenant {role}.",
		LanguageSet:      "La langue est maintenant le français.",
		PlacementNoticed: "Placement enregistré.",

		MissingRole:      "Aucun rôle de joueur n'est défini ou il n'existe plus. Définis-en un avec la commande set-role.",
		AlreadyInGame:    "Une partie est déjà en cours sur ce serveur.",
		NotEnoughPlayers: "Au moins 3 membres doivent avoir le rôle {role} pour jouer.",
		TooManyPlayers:   "Au plus 15 membres peuvent avoir le rôle {role} pour jouer.",
		DMError:          "Je n'ai pas pu envoyer de message privé à {tag}, la partie ne peut pas commencer.",
		NotInGame:        "Aucune partie n'est en cours.",
		NotInVote:        "Les votes ne sont pas ouverts.",
		AlreadyInVote:    "Les votes sont déjà ouverts.",
		NotHost:          "Seul l'hôte de la partie peut faire ça.",
		AlreadyVoted:     "Tu as déjà voté pour {voted}.",
		NoScores:         "Personne n'a encore marqué de points.",
		UnknownGame:      "Cette partie n'existe pas.",
		UnknownLanguage:  "Cette langue n'est pas prise en charge.",
		SystemError:      "Une erreur est survenue, réessaie plus tard.",
	},
	models.LanguageKorean: {
		DMImposter:        "당신은 임포스터입니다! 들키지 않고 대화 중에 **{word}** 단어를 사용하세요.",
		DMCrew:            "당신은 임포스터가 아닙니다. 대화를 지켜보고 비밀 단어를 사용하는 사람을 찾으세요.",
		DMVoided:          "이 게임은 시작되지 못했습니다. 위 메시지는 무시하세요.",
		DMPlaced:          "단어가 확인되었습니다. 잘했어요, 이제 조용히 있으세요.",
		DMPlaceDuringVote: "투표가 시작되었는데 아직 단어를 사용하지 않았습니다. 지금 사용해도 점수는 얻을 수 없습니다.",

		GameLaunch:       "{mention} 새 게임이 시작되었습니다 (#{id})! 개인 메시지를 확인하세요.",
		VoteOpen:         "{mention} 투표가 시작되었습니다! 투표 명령어로 임포스터를 지목하세요.",
		GameCancelled:    "{mention} 게임이 취소되었습니다.",
		Voted:            "{mention} 님이 투표했습니다 ({voteCount}/{playerCount}).",
		VoteEnd:          "{mention} 투표가 종료되었습니다!",
		RevealNormal:     "임포스터는 {sus}, 단어는 **{word}** 였습니다. 사용된 곳: {link}",
		RevealMalus:      "임포스터는 {sus}, 단어는 **{word}** 였습니다. 너무 늦게 사용되었습니다: {link}",
		RevealNotPlaced:  "임포스터는 {sus}, 단어는 **{word}** 였습니다. 한 번도 사용되지 않았습니다!",
		PointsEarned:     "{mention}: {amount}점",
		ScoreboardTitle:  "점수판",
		ScoreboardRow:    "**{rank}.** {user} {points}점",
		GamesTitle:       "{guild}의 게임",
		GamesRow:         "#{id}: {word}",
		GamesFooter:      "{page}/{pages} 페이지",
		GamesEmpty:       "아직 진행된 게임이 없습니다.",
		GameDetails:      "게임 #{id} ({status}): 임포스터는 {sus}, 단어는 **{word}** 였습니다.",
		RemainingVoters:  "아직 투표하지 않은 사람: {voters}",
		RemainingNone:    "모두 투표했습니다.",
		VoteRegistered:   "투표가 등록되었습니다.",
		VotesClosed:      "투표가 종료되었습니다.",
		RoleSet:          "플레이어 역할이 {role}(으)로 설정되었습니다.",
		LanguageSet:      "언어가 한국어로 설정되었습니다.",
		PlacementNoticed: "단어 사용이 기록되었습니다.",

		MissingRole:      "플레이어 역할이 설정되지 않았거나 더 이상 존재하지 않습니다. set-role 명령어로 설정하세요.",
		AlreadyInGame:    "이 서버에서 이미 게임이 진행 중입니다.",
		NotEnoughPlayers: "게임을 하려면 {role} 역할을 가진 멤버가 최소 3명 필요합니다.",
		TooManyPlayers:   "{role} 역할을 가진 멤버는 최대 15명까지 가능합니다.",
		DMError:          "{tag} 님에게 개인 메시지를 보낼 수 없어 게임을 시작할 수 없습니다.",
		NotInGame:        "진행 중인 게임이 없습니다.",
		NotInVote:        "투표가 진행 중이 아닙니다.",
		AlreadyInVote:    "이미 투표가 진행 중입니다.",
		NotHost:          "게임 호스트만 할 수 있습니다.",
		AlreadyVoted:     "이미 {voted} 님에게 투표했습니다.",
		NoScores:         "아직 점수가 없습니다.",
		UnknownGame:      "존재하지 않는 게임입니다.",
		UnknownLanguage:  "지원하지 않는 언어입니다.",
		SystemError:      "오류가 발생했습니다. 나중에 다시 시도하세요.",
	},
}
