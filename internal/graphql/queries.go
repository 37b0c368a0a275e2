package graphql

// operation is a named GraphQL document.
type operation struct {
	name  string
	query string
}

const characterFields = `
      id
      name
      status
      species
      type
      gender
      origin { id name dimension }
      location { id name dimension }
      image
      created`

var (
	opCharacters = operation{
		name: "GetCharacters",
		query: `query GetCharacters($page: Int, $filter: FilterCharacter) {
  characters(page: $page, filter: $filter) {
    info { count pages next prev }
    results {` + characterFields + `
      episode { id name episode }
    }
  }
}`,
	}

	opCharacter = operation{
		name: "GetCharacter",
		query: `query GetCharacter($id: ID!) {
  character(id: $id) {` + characterFields + `
    episode { id name air_date episode }
  }
}`,
	}

	opCharactersByIDs = operation{
		name: "GetMultipleCharacters",
		query: `query GetMultipleCharacters($ids: [ID!]!) {
  charactersByIds(ids: $ids) {` + characterFields + `
  }
}`,
	}

	opEpisodes = operation{
		name: "GetEpisodes",
		query: `query GetEpisodes($page: Int) {
  episodes(page: $page) {
    info { count pages next prev }
    results {
      id
      name
      air_date
      episode
      characters { id name image }
      created
    }
  }
}`,
	}

	opLocations = operation{
		name: "GetLocations",
		query: `query GetLocations($page: Int) {
  locations(page: $page) {
    info { count pages next prev }
    results {
      id
      name
      type
      dimension
      residents { id name image }
      created
    }
  }
}`,
	}
)
